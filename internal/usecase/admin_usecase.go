package usecase

import (
	"context"

	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/internal/policy"
	"go-jobboard-backend/pkg/apperror"
)

type adminUsecase struct {
	stats     domain.StatsRepository
	jobs      domain.JobUsecase
	companies domain.CompanyUsecase
}

func NewAdminUsecase(stats domain.StatsRepository, jobs domain.JobUsecase, companies domain.CompanyUsecase) domain.AdminUsecase {
	return &adminUsecase{stats: stats, jobs: jobs, companies: companies}
}

func (u *adminUsecase) requireAdmin(ctx context.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}
	return policy.Authorize(p, policy.AdminRead, policy.Resource{})
}

// GetStats returns dashboard statistics
func (u *adminUsecase) GetStats(ctx context.Context) (*domain.AdminStats, error) {
	if err := u.requireAdmin(ctx); err != nil {
		return nil, err
	}
	stats, err := u.stats.AdminStats(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return stats, nil
}

// ListJobs is the moderation queue; it defaults to pending jobs.
func (u *adminUsecase) ListJobs(ctx context.Context, f domain.JobFilter) (*domain.Page[domain.Job], error) {
	if err := u.requireAdmin(ctx); err != nil {
		return nil, err
	}
	if len(f.Statuses) == 0 {
		f.Statuses = []domain.JobStatus{domain.JobStatusPending}
	}
	return u.jobs.List(ctx, f)
}

func (u *adminUsecase) ListCompanies(ctx context.Context, f domain.CompanyFilter) (*domain.Page[domain.CompanyWithJobs], error) {
	if err := u.requireAdmin(ctx); err != nil {
		return nil, err
	}
	return u.companies.List(ctx, f)
}
