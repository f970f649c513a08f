package database

import (
	"context"
	"time"

	"go-jobboard-backend/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPostgresConnection opens the shared pgx pool and pings it once, so a bad
// DATABASE_URL fails at startup rather than on the first request.
func NewPostgresConnection(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, err
	}

	// PgBouncer transaction mode rejects named prepared statements.
	// Simple protocol still supports explicit transactions, which the
	// company gateway relies on
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	// Pool sizing
	// MaxConns bounds what one API instance may hold against the database;
	// MinConns keeps a few warm for the first requests after idle periods
	config.MaxConns = 25
	config.MinConns = 5

	// Recycle connections so failovers and PgBouncer restarts are picked up
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Log.Info("database connection established")
	return pool, nil
}
