// Package migrations embeds the SQL schema so the binary can apply it on boot.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
