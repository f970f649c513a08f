package domain

import (
	"context"
	"time"
)

type SavedJob struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	JobID     int64     `json:"job_id"`
	CreatedAt time.Time `json:"created_at"`

	Job *Job `json:"job,omitempty"`
}

type SavedJobRepository interface {
	// Create fails with ErrAlreadyExists when (user, job) is already saved.
	Create(ctx context.Context, s *SavedJob) error
	Delete(ctx context.Context, userID string, jobID int64) (bool, error)
	ListByUser(ctx context.Context, userID string, page PageRequest) ([]SavedJob, int64, error)
}

type SavedJobUsecase interface {
	Save(ctx context.Context, jobID int64) (*SavedJob, error)
	Remove(ctx context.Context, jobID int64) error
	List(ctx context.Context, page PageRequest) (*Page[SavedJob], error)
}
