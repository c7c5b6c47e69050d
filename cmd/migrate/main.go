package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gapmap-ai/gapmap-backend/config"
	"github.com/gapmap-ai/gapmap-backend/internal/bootstrap"
	"github.com/gapmap-ai/gapmap-backend/internal/logger"
)

// migrator is the subset of *migrate.Migrate the commands drive.
type migrator interface {
	Up() error
	Steps(n int) error
	Down() error
	Version() (uint, bool, error)
}

type openFunc func(ctx context.Context) (migrator, func(), error)

func openFromEnv(ctx context.Context) (migrator, func(), error) {
	db := config.LoadDatabase()
	pool, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{DSN: db.ConnString(), MaxConns: 2})
	if err != nil {
		return nil, nil, err
	}
	m, err := bootstrap.NewMigrator(pool)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	return m, func() {
		_, _ = m.Close()
		pool.Close()
	}, nil
}

func newRootCmd(open openFunc, log *zap.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the GapMap database schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd.Context(), open, func(m migrator) error {
				if err := ignoreNoChange(m.Up()); err != nil {
					return err
				}
				return printVersion(cmd, m)
			})
		},
	})

	var steps int
	var all bool
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !all && steps < 1 {
				return fmt.Errorf("--steps must be at least 1")
			}
			return withMigrator(cmd.Context(), open, func(m migrator) error {
				var err error
				if all {
					err = m.Down()
				} else {
					err = m.Steps(-steps)
				}
				if err := ignoreNoChange(err); err != nil {
					return err
				}
				log.Info("rolled back", zap.Int("steps", steps), zap.Bool("all", all))
				return printVersion(cmd, m)
			})
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	down.Flags().BoolVar(&all, "all", false, "roll back every migration")
	root.AddCommand(down)

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd.Context(), open, func(m migrator) error {
				return printVersion(cmd, m)
			})
		},
	})

	return root
}

func withMigrator(ctx context.Context, open openFunc, fn func(migrator) error) error {
	m, closeFn, err := open(ctx)
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(m)
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

func printVersion(cmd *cobra.Command, m migrator) error {
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		fmt.Fprintln(cmd.OutOrStdout(), "version: none")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "version: %d dirty: %t\n", v, dirty)
	return nil
}

func main() {
	log, err := logger.New(os.Getenv("LOG_LEVEL"), "console")
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := newRootCmd(openFromEnv, log).ExecuteContext(context.Background()); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}
}
