// Package app assembles the persistence gateway and its optional
// infrastructure for the binaries under cmd/.
package app

import (
	"context"

	"go-jobboard-backend/config"
	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/internal/repository/memory"
	"go-jobboard-backend/internal/repository/postgres"
	"go-jobboard-backend/pkg/database"
	"go-jobboard-backend/pkg/logger"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Storage is an opened persistence gateway. Pool is nil for the memory driver.
type Storage struct {
	Repos *domain.Repositories
	Pool  *pgxpool.Pool
}

// OpenStorage connects the configured driver. Migrations run on startup when
// RUN_MIGRATIONS is set.
func OpenStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		logger.Log.Warn("Using in-memory storage, data is lost on restart")
		return &Storage{Repos: memory.NewStore().Repositories()}, nil
	case config.StorageDriverPostgres:
		pool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
		if err != nil {
			return nil, errors.Wrap(err, "connect to database")
		}
		if cfg.RunMigrations {
			if err := database.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, err
			}
		}
		return &Storage{Repos: postgres.NewRepositories(pool), Pool: pool}, nil
	default:
		return nil, errors.Newf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}
}

func (s *Storage) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
}

// RequirePool fails for drivers without a database, for maintenance commands.
func (s *Storage) RequirePool() (*pgxpool.Pool, error) {
	if s.Pool == nil {
		return nil, errors.New("this command requires STORAGE_DRIVER=postgres")
	}
	return s.Pool, nil
}
