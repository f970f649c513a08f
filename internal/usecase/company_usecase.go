package usecase

import (
	"context"
	"errors"
	"strings"

	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/internal/policy"
	"go-jobboard-backend/pkg/apperror"
	"go-jobboard-backend/pkg/logger"
)

type companyUsecase struct {
	companies domain.CompanyRepository
	users     domain.UserRepository
	jobs      domain.JobRepository
}

func NewCompanyUsecase(companies domain.CompanyRepository, users domain.UserRepository, jobs domain.JobRepository) domain.CompanyUsecase {
	return &companyUsecase{companies: companies, users: users, jobs: jobs}
}

func (u *companyUsecase) load(ctx context.Context, id int64) (*domain.Company, error) {
	c, err := u.companies.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Company not found")
	}
	return c, nil
}

func (u *companyUsecase) Create(ctx context.Context, c *domain.Company) (*domain.Company, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, policy.CompanyCreate, policy.Resource{}); err != nil {
		return nil, err
	}
	if p.CompanyID != nil {
		return nil, apperror.InvalidState("Your account is already associated with a company")
	}
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return nil, apperror.Validation("Company name is required")
	}

	c.Owners = []string{p.UserID}
	c.IsVerified = false
	// the principal may be stale; the gateway re-checks the link atomically
	if err := u.companies.Create(ctx, c); err != nil {
		if errors.Is(err, domain.ErrOwnerTaken) {
			return nil, apperror.InvalidState("Your account is already associated with a company")
		}
		return nil, storeErr(err, "User not found")
	}
	logger.Log.Info("company created", "company_id", c.ID, "user_id", p.UserID)
	return c, nil
}

// Get returns the company with its active jobs.
func (u *companyUsecase) Get(ctx context.Context, id int64) (*domain.CompanyDetail, error) {
	c, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}
	jobs, _, err := u.jobs.List(ctx, domain.JobFilter{
		CompanyID:   &id,
		Statuses:    []domain.JobStatus{domain.JobStatusActive},
		PageRequest: domain.PageRequest{Page: 1, PageSize: domain.MaxPageSize},
	})
	if err != nil {
		return nil, storeErr(err, "Company not found")
	}
	if jobs == nil {
		jobs = []domain.Job{}
	}
	return &domain.CompanyDetail{Company: *c, Jobs: jobs}, nil
}

func (u *companyUsecase) Update(ctx context.Context, id int64, upd domain.CompanyUpdate) (*domain.Company, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	c, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, policy.CompanyUpdate, policy.Resource{Company: c}); err != nil {
		return nil, err
	}
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return nil, apperror.Validation("Company name cannot be empty")
	}
	if err := u.companies.Update(ctx, id, upd); err != nil {
		return nil, storeErr(err, "Company not found")
	}
	return u.load(ctx, id)
}

func (u *companyUsecase) AddOwner(ctx context.Context, id int64, userID string) (*domain.Company, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	c, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, policy.CompanyManageOwners, policy.Resource{Company: c}); err != nil {
		return nil, err
	}
	if c.HasOwner(userID) {
		return c, nil
	}

	target, err := u.users.GetByID(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "User not found")
	}
	if target.Role != domain.RoleEmployer {
		return nil, apperror.InvalidState("Only employers can own a company")
	}
	if target.CompanyID != nil && *target.CompanyID != id {
		return nil, apperror.InvalidState("User already belongs to another company")
	}

	if err := u.companies.AddOwner(ctx, id, userID); err != nil {
		if errors.Is(err, domain.ErrOwnerTaken) {
			return nil, apperror.InvalidState("User already belongs to another company")
		}
		return nil, storeErr(err, "Company not found")
	}
	return u.load(ctx, id)
}

func (u *companyUsecase) RemoveOwner(ctx context.Context, id int64, userID string) (*domain.Company, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	c, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, policy.CompanyManageOwners, policy.Resource{Company: c}); err != nil {
		return nil, err
	}
	if !c.HasOwner(userID) {
		return nil, apperror.NotFound("Owner not found")
	}

	removed, err := u.companies.RemoveOwner(ctx, id, userID)
	if err != nil {
		return nil, storeErr(err, "Company not found")
	}
	if !removed {
		return nil, apperror.InvalidState("A company must keep at least one owner").WithReason("last_owner")
	}
	if err := u.users.SetCompany(ctx, userID, nil); err != nil {
		logger.Log.Warn("failed to detach removed owner", "company_id", id, "user_id", userID, "error", err)
	}
	return u.load(ctx, id)
}

// Review applies an admin verification decision. Reject leaves the company
// unverified and is only accepted while it still is.
func (u *companyUsecase) Review(ctx context.Context, id int64, action domain.CompanyAction) (*domain.Company, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	c, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}

	switch action {
	case domain.CompanyActionVerify:
		if err := policy.Authorize(p, policy.CompanyVerify, policy.Resource{Company: c}); err != nil {
			return nil, err
		}
		if !domain.CanVerifyCompany(c) {
			return c, nil
		}
		if _, err := u.companies.VerifyIfUnverified(ctx, id); err != nil {
			return nil, storeErr(err, "Company not found")
		}
		logger.Log.Info("company verified", "company_id", id, "admin_id", p.UserID)
		return u.load(ctx, id)

	case domain.CompanyActionReject:
		if err := policy.Authorize(p, policy.CompanyReject, policy.Resource{Company: c}); err != nil {
			return nil, err
		}
		if !domain.CanRejectCompany(c) {
			return nil, apperror.InvalidState("A verified company cannot be rejected")
		}
		logger.Log.Info("company verification rejected", "company_id", id, "admin_id", p.UserID)
		return c, nil

	default:
		return nil, apperror.Validation("Action must be verify or reject")
	}
}

func (u *companyUsecase) List(ctx context.Context, f domain.CompanyFilter) (*domain.Page[domain.CompanyWithJobs], error) {
	f.PageRequest = f.PageRequest.Normalize()
	companies, total, err := u.companies.List(ctx, f)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	ids := make([]int64, len(companies))
	for i, c := range companies {
		ids[i] = c.ID
	}
	counts, err := u.companies.CountActiveJobs(ctx, ids)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	items := make([]domain.CompanyWithJobs, len(companies))
	for i, c := range companies {
		items[i] = domain.CompanyWithJobs{Company: c, ActiveJobCount: counts[c.ID]}
	}
	return domain.NewPage(items, total, f.PageRequest), nil
}
