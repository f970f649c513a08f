// Package policy decides whether a principal may perform an action on a set
// of resources. Decisions are pure: the caller resolves every resource from
// storage first and never passes client-supplied ownership data.
package policy

import (
	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/apperror"
)

type Action string

const (
	CompanyCreate       Action = "company:create"
	CompanyUpdate       Action = "company:update"
	CompanyManageOwners Action = "company:manage_owners"
	CompanyVerify       Action = "company:verify"
	CompanyReject       Action = "company:reject"

	JobCreate       Action = "job:create"
	JobUpdate       Action = "job:update"
	JobClose        Action = "job:close"
	JobApprove      Action = "job:approve"
	JobReject       Action = "job:reject"
	JobViewPipeline Action = "job:view_pipeline"

	ApplicationCreate            Action = "application:create"
	ApplicationRead              Action = "application:read"
	ApplicationUpdateStatus      Action = "application:update_status"
	ApplicationWithdraw          Action = "application:withdraw"
	ApplicationUpdateByApplicant Action = "application:update_by_applicant"
	ApplicationListOwn           Action = "application:list_own"

	SavedJobManage Action = "saved_job:manage"
	JobAlertManage Action = "job_alert:manage"
	AdminRead      Action = "admin:read"
)

// Resource carries the stored entities an action refers to.
type Resource struct {
	Company     *domain.Company
	Job         *domain.Job
	Application *domain.Application
	JobAlert    *domain.JobAlert
}

// Denial reasons surfaced to clients.
const (
	ReasonCompanyRequired      = "company_required"
	ReasonCompanyUnverified    = "company_unverified"
	ReasonRegistrationRequired = "registration_required"
)

type rule func(p *domain.Principal, res Resource) error

var rules = map[Action]rule{
	CompanyCreate:       requireRole(domain.RoleEmployer),
	CompanyUpdate:       companyOwner,
	CompanyManageOwners: companyOwner,
	CompanyVerify:       requireRole(domain.RoleAdmin),
	CompanyReject:       requireRole(domain.RoleAdmin),

	JobCreate:       jobCreate,
	JobUpdate:       jobOwner,
	JobClose:        jobOwner,
	JobApprove:      requireRole(domain.RoleAdmin),
	JobReject:       requireRole(domain.RoleAdmin),
	JobViewPipeline: jobOwnerOrAdmin,

	ApplicationCreate:            applicationCreate,
	ApplicationRead:              applicationRead,
	ApplicationUpdateStatus:      applicationEmployer,
	ApplicationWithdraw:          applicationApplicant,
	ApplicationUpdateByApplicant: applicationApplicant,
	ApplicationListOwn:           requireRole(domain.RoleSeeker),

	SavedJobManage: requireRole(domain.RoleSeeker, domain.RoleEmployer, domain.RoleAdmin),
	JobAlertManage: jobAlertOwner,
	AdminRead:      requireRole(domain.RoleAdmin),
}

// Authorize returns nil when p may perform action on res. Unknown actions are
// denied.
func Authorize(p *domain.Principal, action Action, res Resource) error {
	if p == nil || p.UserID == "" {
		return apperror.Unauthenticated("Authentication required")
	}
	if p.Role == "" {
		return apperror.Forbidden("Complete registration before continuing").WithReason(ReasonRegistrationRequired)
	}
	r, ok := rules[action]
	if !ok {
		return apperror.Forbidden("Action not permitted")
	}
	return r(p, res)
}

func requireRole(roles ...domain.Role) rule {
	return func(p *domain.Principal, _ Resource) error {
		for _, role := range roles {
			if p.Role == role {
				return nil
			}
		}
		return apperror.Forbidden("Your role cannot perform this action")
	}
}

func companyOwner(p *domain.Principal, res Resource) error {
	if p.Role != domain.RoleEmployer || res.Company == nil || !res.Company.HasOwner(p.UserID) {
		return apperror.Forbidden("Only company owners can manage this company")
	}
	return nil
}

func jobCreate(p *domain.Principal, res Resource) error {
	if p.Role != domain.RoleEmployer {
		return apperror.Forbidden("Only employers can post jobs")
	}
	if p.CompanyID == nil || res.Company == nil {
		return apperror.InvalidState("Associate your account with a company before posting jobs").WithReason(ReasonCompanyRequired)
	}
	if res.Company.ID != *p.CompanyID {
		return apperror.Forbidden("Jobs can only be posted for your own company")
	}
	if !res.Company.IsVerified {
		return apperror.Forbidden("Your company must be verified before posting jobs").WithReason(ReasonCompanyUnverified)
	}
	return nil
}

func jobOwner(p *domain.Principal, res Resource) error {
	if res.Job == nil || !p.BelongsTo(res.Job.CompanyID) {
		return apperror.Forbidden("Only the owning employer can change this job")
	}
	return nil
}

func jobOwnerOrAdmin(p *domain.Principal, res Resource) error {
	if p.IsAdmin() {
		return nil
	}
	return jobOwner(p, res)
}

func applicationCreate(p *domain.Principal, res Resource) error {
	if p.Role != domain.RoleSeeker {
		return apperror.Forbidden("Only job seekers can apply to jobs")
	}
	if res.Job == nil {
		return apperror.NotFound("Job not found")
	}
	if res.Job.Status != domain.JobStatusActive {
		return apperror.InvalidState("This job is no longer accepting applications")
	}
	return nil
}

func applicationRead(p *domain.Principal, res Resource) error {
	if res.Application == nil {
		return apperror.Forbidden("Access denied")
	}
	if p.IsAdmin() || res.Application.ApplicantID == p.UserID {
		return nil
	}
	if res.Job != nil && res.Job.ID == res.Application.JobID && p.BelongsTo(res.Job.CompanyID) {
		return nil
	}
	return apperror.Forbidden("Access denied")
}

func applicationEmployer(p *domain.Principal, res Resource) error {
	if res.Application == nil || res.Job == nil || res.Job.ID != res.Application.JobID || !p.BelongsTo(res.Job.CompanyID) {
		return apperror.Forbidden("Only the hiring company can update this application")
	}
	return nil
}

func applicationApplicant(p *domain.Principal, res Resource) error {
	if res.Application == nil || res.Application.ApplicantID != p.UserID {
		return apperror.Forbidden("Access denied")
	}
	if !domain.CanWithdraw(res.Application.Status) {
		return apperror.InvalidState("Application can no longer be changed in its current status")
	}
	return nil
}

func jobAlertOwner(p *domain.Principal, res Resource) error {
	if res.JobAlert != nil && res.JobAlert.UserID != p.UserID {
		return apperror.Forbidden("Access denied")
	}
	return nil
}
