package db

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/jackc/pgx/v4/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/AlibekovAA/task-tracker/backend/internal/common/logger"
	"github.com/AlibekovAA/task-tracker/backend/internal/migrations"
)

// MigratePostgres applies the embedded PostgreSQL migrations through a
// database/sql handle borrowed from the pool's connection config.
func MigratePostgres(ctx context.Context, log *logger.Logger, pool *pgxpool.Pool) error {
	sqlDB := stdlib.OpenDB(*pool.Config().ConnConfig)
	defer sqlDB.Close()

	return migrate(ctx, log, goose.DialectPostgres, sqlDB, migrations.Postgres)
}

func MigrateSQLite(ctx context.Context, log *logger.Logger, sqlDB *sql.DB) error {
	return migrate(ctx, log, goose.DialectSQLite3, sqlDB, migrations.SQLite)
}

func migrate(ctx context.Context, log *logger.Logger, dialect goose.Dialect, sqlDB *sql.DB, fsys fs.FS) error {
	provider, err := goose.NewProvider(dialect, sqlDB, fsys)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	if log != nil {
		for _, r := range results {
			log.Infof("migration applied: %s (%v)", r.Source.Path, r.Duration)
		}
	}
	return nil
}
