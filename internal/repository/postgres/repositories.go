// Package postgres implements the persistence gateway on PostgreSQL through
// a pgx connection pool.
package postgres

import (
	"go-jobboard-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositories bundles every PostgreSQL-backed repository over one pool.
func NewRepositories(db *pgxpool.Pool) *domain.Repositories {
	return &domain.Repositories{
		Users:         NewUserRepository(db),
		Companies:     NewCompanyRepository(db),
		Jobs:          NewJobRepository(db),
		Applications:  NewApplicationRepository(db),
		SavedJobs:     NewSavedJobRepository(db),
		JobAlerts:     NewJobAlertRepository(db),
		PaymentEvents: NewPaymentEventRepository(db),
		Stats:         NewStatsRepository(db),
	}
}
