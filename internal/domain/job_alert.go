package domain

import (
	"context"
	"time"
)

type AlertFrequency string

const (
	AlertFrequencyDaily  AlertFrequency = "daily"
	AlertFrequencyWeekly AlertFrequency = "weekly"
)

// JobAlert is a saved search owned by a user. Delivery of alert digests is
// handled outside this service; Matches serves the same search on demand.
type JobAlert struct {
	ID       int64   `json:"id"`
	UserID   string  `json:"user_id"`
	Keywords string  `json:"keywords"`
	Location string  `json:"location"`
	Type     JobType `json:"type,omitempty"`
	// MinSalary of zero means no lower bound.
	MinSalary float64        `json:"min_salary,omitempty"`
	Frequency AlertFrequency `json:"frequency"`
	Active    bool           `json:"active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Filter is the active-job search the alert stands for.
func (a *JobAlert) Filter(page PageRequest) JobFilter {
	return JobFilter{
		Search:      a.Keywords,
		Location:    a.Location,
		Type:        a.Type,
		MinSalary:   a.MinSalary,
		Statuses:    []JobStatus{JobStatusActive},
		PageRequest: page,
	}
}

type JobAlertUpdate struct {
	Keywords  *string
	Location  *string
	Type      *JobType
	MinSalary *float64
	Frequency *AlertFrequency
	Active    *bool
}

type JobAlertRepository interface {
	Create(ctx context.Context, a *JobAlert) error
	GetByID(ctx context.Context, id int64) (*JobAlert, error)
	Update(ctx context.Context, id int64, upd JobAlertUpdate) error
	Delete(ctx context.Context, id int64) error
	ListByUser(ctx context.Context, userID string) ([]JobAlert, error)
}

type JobAlertUsecase interface {
	Create(ctx context.Context, a *JobAlert) (*JobAlert, error)
	Update(ctx context.Context, id int64, upd JobAlertUpdate) (*JobAlert, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]JobAlert, error)
	// Matches lists the active jobs the alert currently matches.
	Matches(ctx context.Context, id int64, page PageRequest) (*Page[Job], error)
}
