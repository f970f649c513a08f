package memory

import (
	"context"

	"go-jobboard-backend/internal/domain"
)

type statsRepo struct{ s *Store }

func (r *statsRepo) AdminStats(ctx context.Context) (*domain.AdminStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stats := &domain.AdminStats{
		TotalUsers:        int64(len(r.s.users)),
		TotalJobs:         int64(len(r.s.jobs)),
		TotalApplications: int64(len(r.s.applications)),
		TotalCompanies:    int64(len(r.s.companies)),
	}
	for _, j := range r.s.jobs {
		switch j.Status {
		case domain.JobStatusActive:
			stats.ActiveJobs++
		case domain.JobStatusPending:
			stats.PendingJobs++
		}
	}
	for _, c := range r.s.companies {
		if !c.IsVerified {
			stats.UnverifiedCompanies++
		}
	}
	return stats, nil
}
