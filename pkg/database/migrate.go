package database

import (
	"context"
	"database/sql"

	"go-jobboard-backend/pkg/database/migrations"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// openSQL exposes the pool as a database/sql handle for goose.
func openSQL(pool *pgxpool.Pool) *sql.DB {
	return stdlib.OpenDBFromPool(pool)
}

func setupGoose() error {
	goose.SetBaseFS(migrations.FS)
	return goose.SetDialect("pgx")
}

// Migrate applies every pending embedded migration.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if err := setupGoose(); err != nil {
		return errors.Wrap(err, "goose dialect")
	}
	db := openSQL(pool)
	defer db.Close()
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return errors.Wrap(err, "apply migrations")
	}
	return nil
}

// MigrationStatus logs the applied state of every embedded migration.
func MigrationStatus(ctx context.Context, pool *pgxpool.Pool) error {
	if err := setupGoose(); err != nil {
		return errors.Wrap(err, "goose dialect")
	}
	db := openSQL(pool)
	defer db.Close()
	return errors.Wrap(goose.StatusContext(ctx, db, "."), "migration status")
}
