package domain

import (
	"context"
	"time"
)

type JobStatus string

const (
	JobStatusPending JobStatus = "pending"
	JobStatusActive  JobStatus = "active"
	JobStatusClosed  JobStatus = "closed"
)

func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusPending, JobStatusActive, JobStatusClosed:
		return true
	}
	return false
}

type JobType string

const (
	JobTypeFullTime   JobType = "full-time"
	JobTypePartTime   JobType = "part-time"
	JobTypeContract   JobType = "contract"
	JobTypeInternship JobType = "internship"
)

func (t JobType) Valid() bool {
	switch t {
	case JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeInternship:
		return true
	}
	return false
}

type Salary struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Currency string  `json:"currency"`
}

type Job struct {
	ID               int64      `json:"id"`
	CompanyID        int64      `json:"company_id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Requirements     string     `json:"requirements"`
	Benefits         *string    `json:"benefits,omitempty"`
	Location         string     `json:"location"`
	Salary           Salary     `json:"salary"`
	Type             JobType    `json:"type"`
	ExperienceLevel  string     `json:"experience_level"`
	Category         string     `json:"category"`
	Skills           []string   `json:"skills"`
	Status           JobStatus  `json:"status"`
	Featured         bool       `json:"featured"`
	Views            int64      `json:"views"`
	ApplicationCount int64      `json:"application_count"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	// Joined for listings
	CompanyName *string `json:"company_name,omitempty"`
}

// JobUpdate carries the editable fields of a job. Status and company are not
// editable through it.
type JobUpdate struct {
	Title           *string
	Description     *string
	Requirements    *string
	Benefits        *string
	Location        *string
	Salary          *Salary
	Type            *JobType
	ExperienceLevel *string
	Category        *string
	Skills          []string
	ExpiresAt       *time.Time
}

type JobFilter struct {
	Search          string
	Location        string
	Type            JobType
	ExperienceLevel string
	Category        string
	CompanyID       *int64
	Statuses        []JobStatus
	Featured        *bool
	// MinSalary keeps jobs whose salary range starts at or above it.
	MinSalary float64
	PageRequest
}

type JobRepository interface {
	Create(ctx context.Context, job *Job) error
	GetByID(ctx context.Context, id int64) (*Job, error)
	Update(ctx context.Context, id int64, upd JobUpdate) error
	// UpdateStatusIf moves the job to `to` only when its current status is in
	// `from`; featured is OR-ed into the stored flag. Reports whether a row changed.
	UpdateStatusIf(ctx context.Context, id int64, from []JobStatus, to JobStatus, featured bool) (bool, error)
	// IncrementApplicationCount adds delta atomically, never going below zero.
	IncrementApplicationCount(ctx context.Context, id int64, delta int) error
	IncrementViews(ctx context.Context, id int64) error
	List(ctx context.Context, f JobFilter) ([]Job, int64, error)
	// ApplicationCountDrift returns live rows minus application_count for
	// every job whose counter disagrees with its applications.
	ApplicationCountDrift(ctx context.Context) (map[int64]int64, error)
	// RepairApplicationCounts sets application_count to the live count for
	// the given jobs, but only where the drift still equals the expected
	// value. Returns how many jobs were corrected.
	RepairApplicationCounts(ctx context.Context, expected map[int64]int64) (int64, error)
}

type JobUsecase interface {
	Create(ctx context.Context, job *Job) (*Job, error)
	Get(ctx context.Context, id int64) (*Job, error)
	Update(ctx context.Context, id int64, upd JobUpdate) (*Job, error)
	Transition(ctx context.Context, id int64, t JobTransition) (*Job, error)
	List(ctx context.Context, f JobFilter) (*Page[Job], error)
	ListForEmployer(ctx context.Context, f JobFilter) (*Page[Job], error)
}
