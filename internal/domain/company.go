package domain

import (
	"context"
	"slices"
	"time"
)

type Company struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Logo        *string   `json:"logo,omitempty"`
	Website     *string   `json:"website,omitempty"`
	Location    string    `json:"location"`
	Size        string    `json:"size"`
	Industry    string    `json:"industry"`
	Owners      []string  `json:"owners"`
	IsVerified  bool      `json:"is_verified"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CompanyWithJobs is a company listing row with the number of active jobs.
type CompanyWithJobs struct {
	Company
	ActiveJobCount int64 `json:"active_job_count"`
}

// CompanyDetail is a company with its currently active jobs.
type CompanyDetail struct {
	Company
	Jobs []Job `json:"jobs"`
}

func (c *Company) HasOwner(userID string) bool {
	return slices.Contains(c.Owners, userID)
}

// Verification transitions. Verified is terminal: reject is only meaningful
// while a company is still unverified.
func CanVerifyCompany(c *Company) bool {
	return !c.IsVerified
}

func CanRejectCompany(c *Company) bool {
	return !c.IsVerified
}

type CompanyAction string

const (
	CompanyActionVerify CompanyAction = "verify"
	CompanyActionReject CompanyAction = "reject"
)

type CompanyFilter struct {
	Search   string
	Verified *bool
	PageRequest
}

type CompanyUpdate struct {
	Name        *string
	Description *string
	Logo        *string
	Website     *string
	Location    *string
	Size        *string
	Industry    *string
}

type CompanyRepository interface {
	// Create inserts c and links its first owner to it atomically. It
	// returns ErrOwnerTaken, and stores nothing, when that owner already
	// belongs to a company.
	Create(ctx context.Context, c *Company) error
	GetByID(ctx context.Context, id int64) (*Company, error)
	Update(ctx context.Context, id int64, upd CompanyUpdate) error
	// AddOwner appends userID and links the user in one step, failing with
	// ErrOwnerTaken when the user belongs to a different company.
	AddOwner(ctx context.Context, id int64, userID string) error
	// RemoveOwner removes userID unless it is the last owner; it reports
	// whether a row changed.
	RemoveOwner(ctx context.Context, id int64, userID string) (bool, error)
	// VerifyIfUnverified sets is_verified when it is currently false and
	// reports whether the row changed.
	VerifyIfUnverified(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, f CompanyFilter) ([]Company, int64, error)
	// CountActiveJobs returns active job counts keyed by company id in one round trip.
	CountActiveJobs(ctx context.Context, companyIDs []int64) (map[int64]int64, error)
}

type CompanyUsecase interface {
	Create(ctx context.Context, c *Company) (*Company, error)
	Get(ctx context.Context, id int64) (*CompanyDetail, error)
	Update(ctx context.Context, id int64, upd CompanyUpdate) (*Company, error)
	AddOwner(ctx context.Context, id int64, userID string) (*Company, error)
	RemoveOwner(ctx context.Context, id int64, userID string) (*Company, error)
	Review(ctx context.Context, id int64, action CompanyAction) (*Company, error)
	List(ctx context.Context, f CompanyFilter) (*Page[CompanyWithJobs], error)
}
