package postgres

import (
	"context"

	"go-jobboard-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type statsRepo struct {
	db *pgxpool.Pool
}

func NewStatsRepository(db *pgxpool.Pool) domain.StatsRepository {
	return &statsRepo{db: db}
}

// AdminStats fetches dashboard statistics in a single round trip
func (r *statsRepo) AdminStats(ctx context.Context) (*domain.AdminStats, error) {
	query := `SELECT
        (SELECT COUNT(*) FROM users),
        (SELECT COUNT(*) FROM jobs),
        (SELECT COUNT(*) FROM jobs WHERE status = 'active'),
        (SELECT COUNT(*) FROM jobs WHERE status = 'pending'),
        (SELECT COUNT(*) FROM applications),
        (SELECT COUNT(*) FROM companies),
        (SELECT COUNT(*) FROM companies WHERE is_verified = FALSE)`
	var s domain.AdminStats
	err := r.db.QueryRow(ctx, query).Scan(
		&s.TotalUsers, &s.TotalJobs, &s.ActiveJobs, &s.PendingJobs,
		&s.TotalApplications, &s.TotalCompanies, &s.UnverifiedCompanies,
	)
	if err != nil {
		return nil, translate(err, "admin stats")
	}
	return &s, nil
}
