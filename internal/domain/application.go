package domain

import (
	"context"
	"time"
)

type ApplicationStatus string

const (
	ApplicationStatusPending     ApplicationStatus = "pending"
	ApplicationStatusReviewing   ApplicationStatus = "reviewing"
	ApplicationStatusShortlisted ApplicationStatus = "shortlisted"
	ApplicationStatusRejected    ApplicationStatus = "rejected"
	ApplicationStatusAccepted    ApplicationStatus = "accepted"
)

// Application is a seeker's application to a job
type Application struct {
	ID          int64             `json:"id"`
	JobID       int64             `json:"job_id"`
	ApplicantID string            `json:"applicant_id"`
	Resume      string            `json:"resume"` // URL
	CoverLetter *string           `json:"cover_letter,omitempty"`
	Status      ApplicationStatus `json:"status"`
	Notes       *string           `json:"notes,omitempty"` // employer only
	Viewed      bool              `json:"viewed"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`

	// Joined data for list responses
	JobTitle       *string `json:"job_title,omitempty"`
	CompanyID      *int64  `json:"company_id,omitempty"`
	ApplicantEmail *string `json:"applicant_email,omitempty"`
}

// ForApplicant strips employer-only fields.
func (a Application) ForApplicant() Application {
	a.Notes = nil
	return a
}

type ApplicationFilter struct {
	JobID       *int64
	ApplicantID string
	CompanyID   *int64
	Statuses    []ApplicationStatus
	PageRequest
}

// ApplicationStats summarises a seeker's applications.
type ApplicationStats struct {
	Total              int64 `json:"total"`
	Pending            int64 `json:"pending"`
	Reviewing          int64 `json:"reviewing"`
	Shortlisted        int64 `json:"shortlisted"`
	Accepted           int64 `json:"accepted"`
	Rejected           int64 `json:"rejected"`
	ResponseRate       int   `json:"response_rate"` // percent of applications that got a decision or shortlist
	RecentApplications int64 `json:"recent_applications"`
}

// ApplicationCheck answers "has the caller applied to this job".
type ApplicationCheck struct {
	HasApplied  bool         `json:"has_applied"`
	Application *Application `json:"application"`
}

type ApplicationStatusUpdate struct {
	Status ApplicationStatus
	Notes  *string
}

type ApplicantUpdate struct {
	Resume      *string
	CoverLetter *string
}

// BulkRequest is a set of independent per-item transitions. With AllOrNothing
// the batch is rejected up front if any item would be skipped.
type BulkRequest struct {
	IDs          []int64
	Status       ApplicationStatus // status updates only
	Notes        *string
	AllOrNothing bool
}

type BulkItemResult struct {
	ID      int64  `json:"id"`
	Outcome string `json:"outcome"` // affected | unchanged | skipped
	Reason  string `json:"reason,omitempty"`
}

type BulkResult struct {
	Affected int              `json:"affected"`
	Skipped  int              `json:"skipped"`
	Items    []BulkItemResult `json:"items"`
}

const (
	BulkOutcomeAffected  = "affected"
	BulkOutcomeUnchanged = "unchanged"
	BulkOutcomeSkipped   = "skipped"
)

// ApplicationExport is a rendered applicant export file.
type ApplicationExport struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ApplicationRepository defines data access for applications
type ApplicationRepository interface {
	// Create inserts the application; ErrAlreadyExists on a (job, applicant) collision.
	Create(ctx context.Context, app *Application) error
	GetByID(ctx context.Context, id int64) (*Application, error)
	GetByJobAndApplicant(ctx context.Context, jobID int64, applicantID string) (*Application, error)
	List(ctx context.Context, f ApplicationFilter) ([]Application, int64, error)
	// UpdateStatusIf applies the update only while the stored status equals
	// `from` and reports whether a row changed.
	UpdateStatusIf(ctx context.Context, id int64, from ApplicationStatus, upd ApplicationStatusUpdate) (bool, error)
	UpdateNotes(ctx context.Context, id int64, notes *string) error
	// UpdateByApplicantIf edits applicant fields while the status is in `statuses`.
	UpdateByApplicantIf(ctx context.Context, id int64, applicantID string, statuses []ApplicationStatus, upd ApplicantUpdate) (bool, error)
	MarkViewed(ctx context.Context, id int64) error
	// DeleteIf removes the applicant's application while its status is in
	// `statuses` and returns the deleted row, or nil if nothing matched.
	DeleteIf(ctx context.Context, id int64, applicantID string, statuses []ApplicationStatus) (*Application, error)
	CountByStatus(ctx context.Context, applicantID string, since time.Time) (map[ApplicationStatus]int64, int64, error)
}

// ApplicationUsecase is the application lifecycle
type ApplicationUsecase interface {
	// Seeker operations
	Apply(ctx context.Context, jobID int64, resume, coverLetter string) (*Application, error)
	Withdraw(ctx context.Context, id int64) error
	BulkWithdraw(ctx context.Context, req BulkRequest) (*BulkResult, error)
	UpdateByApplicant(ctx context.Context, id int64, upd ApplicantUpdate) (*Application, error)
	ListMine(ctx context.Context, f ApplicationFilter) (*Page[Application], error)
	Check(ctx context.Context, jobID int64) (*ApplicationCheck, error)
	Stats(ctx context.Context) (*ApplicationStats, error)

	// Shared
	Get(ctx context.Context, id int64) (*Application, error)

	// Employer operations
	UpdateStatus(ctx context.Context, id int64, upd ApplicationStatusUpdate) (*Application, error)
	BulkUpdateStatus(ctx context.Context, req BulkRequest) (*BulkResult, error)
	ListForJob(ctx context.Context, jobID int64, f ApplicationFilter) (*Page[Application], error)
	ExportForJob(ctx context.Context, jobID int64, format string) (*ApplicationExport, error)

	// Admin
	ListAll(ctx context.Context, f ApplicationFilter) (*Page[Application], error)
}
