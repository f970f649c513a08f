package domain

import "context"

// AdminStats contains dashboard statistics
type AdminStats struct {
	TotalUsers          int64 `json:"total_users"`
	TotalJobs           int64 `json:"total_jobs"`
	ActiveJobs          int64 `json:"active_jobs"`
	PendingJobs         int64 `json:"pending_jobs"`
	TotalApplications   int64 `json:"total_applications"`
	TotalCompanies      int64 `json:"total_companies"`
	UnverifiedCompanies int64 `json:"unverified_companies"`
}

type StatsRepository interface {
	AdminStats(ctx context.Context) (*AdminStats, error)
}

type AdminUsecase interface {
	GetStats(ctx context.Context) (*AdminStats, error)
	ListJobs(ctx context.Context, f JobFilter) (*Page[Job], error)
	ListCompanies(ctx context.Context, f CompanyFilter) (*Page[CompanyWithJobs], error)
}
