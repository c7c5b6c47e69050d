package bootstrap

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/gapmap-ai/gapmap-backend/migrations"
)

// NewMigrator returns a migrator over the embedded schema that borrows the
// pool's connections. Closing it does not close the pool.
func NewMigrator(pool *pgxpool.Pool) (*migrate.Migrate, error) {
	if pool == nil {
		return nil, fmt.Errorf("database pool is nil")
	}

	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("migration source: %w", err)
	}

	sqlDB := stdlib.OpenDBFromPool(pool)
	driver, err := migratepgx.WithInstance(sqlDB, &migratepgx.Config{})
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate instance: %w", err)
	}
	return m, nil
}

// Migrate applies all pending embedded migrations.
func Migrate(pool *pgxpool.Pool, log *zap.Logger) error {
	m, err := NewMigrator(pool)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("database migrations up to date")
			return nil
		}
		return fmt.Errorf("run migrations: %w", err)
	}

	version, _, _ := m.Version()
	log.Info("database migrations applied", zap.Uint("version", version))
	return nil
}
