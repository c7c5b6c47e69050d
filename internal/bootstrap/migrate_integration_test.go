package bootstrap

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestIntegration_MigrateIsIdempotent(t *testing.T) {
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set, skipping PostgreSQL integration test")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	log := zap.NewNop()
	require.NoError(t, Migrate(pool, log))
	require.NoError(t, Migrate(pool, log), "second run is a no-op")

	var n int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT count(*) FROM information_schema.tables WHERE table_name IN ('project', 'profiles')`,
	).Scan(&n))
	assert.Equal(t, 2, n)

	require.NoError(t, pool.Ping(ctx), "pool survives migrator close")
}

func TestMigrate_NilPool(t *testing.T) {
	assert.Error(t, Migrate(nil, zap.NewNop()))
}
