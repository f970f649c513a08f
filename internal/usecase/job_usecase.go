package usecase

import (
	"context"
	"strings"

	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/internal/policy"
	"go-jobboard-backend/pkg/apperror"
	"go-jobboard-backend/pkg/logger"
)

// jobEngine applies job transitions through the conditional update. It is
// shared by the API path and the payment webhook path so both go through the
// same transition table.
type jobEngine struct {
	jobs    domain.JobRepository
	notices *notices
}

func (e *jobEngine) load(ctx context.Context, id int64) (*domain.Job, error) {
	job, err := e.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Job not found")
	}
	return job, nil
}

// apply moves job along t. Reapplying a transition whose target is already
// reached is a no-op. When the conditional update loses a race the stored
// state is returned as is: a concurrent actor already made the decision.
func (e *jobEngine) apply(ctx context.Context, job *domain.Job, t domain.JobTransition) (*domain.Job, error) {
	to, err := domain.NextJobStatus(job.Status, t)
	if err != nil {
		if job.Status == domain.JobTransitionTarget(t) {
			return job, nil
		}
		return nil, apperror.InvalidState("Job cannot be moved from " + string(job.Status) + " by " + t.Name())
	}

	var featured bool
	if pc, ok := t.(domain.JobPaymentConfirmed); ok {
		featured = pc.Featured
	}

	changed, err := e.jobs.UpdateStatusIf(ctx, job.ID, domain.JobTransitionSources(t), to, featured)
	if err != nil {
		return nil, storeErr(err, "Job not found")
	}
	fresh, err := e.load(ctx, job.ID)
	if err != nil {
		return nil, err
	}
	if !changed {
		logger.Log.Info("job transition lost race", "job_id", job.ID, "transition", t.Name(), "status", fresh.Status)
		return fresh, nil
	}

	logger.Log.Info("job transitioned", "job_id", job.ID, "transition", t.Name(), "from", job.Status, "to", to)
	switch t.(type) {
	case domain.JobApprove:
		e.notices.toCompanyOwners(ctx, domain.TemplateJobApproved, fresh.CompanyID, jobData(fresh))
	case domain.JobReject:
		e.notices.toCompanyOwners(ctx, domain.TemplateJobRejected, fresh.CompanyID, jobData(fresh))
	}
	return fresh, nil
}

type jobUsecase struct {
	jobEngine
	companies domain.CompanyRepository
}

func NewJobUsecase(jobs domain.JobRepository, companies domain.CompanyRepository, users domain.UserRepository, notifier domain.Notifier, frontendURL string) domain.JobUsecase {
	return &jobUsecase{
		jobEngine: jobEngine{
			jobs:    jobs,
			notices: &notices{notifier: notifier, users: users, companies: companies, frontendURL: frontendURL},
		},
		companies: companies,
	}
}

// visible reports whether p may see job at all. Hidden jobs are reported as
// not found.
func visible(p *domain.Principal, job *domain.Job) bool {
	return job.Status == domain.JobStatusActive || p.IsAdmin() || p.BelongsTo(job.CompanyID)
}

func validateJob(job *domain.Job) error {
	if strings.TrimSpace(job.Title) == "" {
		return apperror.Validation("Title is required")
	}
	if strings.TrimSpace(job.Description) == "" {
		return apperror.Validation("Description is required")
	}
	if !job.Type.Valid() {
		return apperror.Validation("Type must be one of full-time, part-time, contract, internship")
	}
	return validateSalary(job.Salary)
}

func validateSalary(s domain.Salary) error {
	if s.Min < 0 || s.Max < 0 {
		return apperror.Validation("Salary cannot be negative")
	}
	if s.Max > 0 && s.Min > s.Max {
		return apperror.Validation("Minimum salary cannot be greater than maximum salary")
	}
	return nil
}

func (u *jobUsecase) Create(ctx context.Context, job *domain.Job) (*domain.Job, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}

	var company *domain.Company
	if p.CompanyID != nil {
		company, err = u.companies.GetByID(ctx, *p.CompanyID)
		if err != nil {
			return nil, storeErr(err, "Company not found")
		}
	}
	if err := policy.Authorize(p, policy.JobCreate, policy.Resource{Company: company}); err != nil {
		return nil, err
	}
	if err := validateJob(job); err != nil {
		return nil, err
	}

	job.CompanyID = company.ID
	job.Status = domain.JobStatusPending
	job.Featured = false
	job.Views = 0
	job.ApplicationCount = 0
	if job.Skills == nil {
		job.Skills = []string{}
	}
	if err := u.jobs.Create(ctx, job); err != nil {
		return nil, storeErr(err, "Company not found")
	}
	logger.Log.Info("job created", "job_id", job.ID, "company_id", job.CompanyID, "user_id", p.UserID)
	return u.load(ctx, job.ID)
}

func (u *jobUsecase) Get(ctx context.Context, id int64) (*domain.Job, error) {
	p := domain.PrincipalFrom(ctx)
	job, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visible(p, job) {
		return nil, apperror.NotFound("Job not found")
	}
	if !p.BelongsTo(job.CompanyID) {
		if err := u.jobs.IncrementViews(ctx, id); err != nil {
			logger.Log.Warn("failed to count job view", "job_id", id, "error", err)
		} else {
			job.Views++
		}
	}
	return job, nil
}

func (u *jobUsecase) Update(ctx context.Context, id int64, upd domain.JobUpdate) (*domain.Job, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	job, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visible(p, job) {
		return nil, apperror.NotFound("Job not found")
	}
	if err := policy.Authorize(p, policy.JobUpdate, policy.Resource{Job: job}); err != nil {
		return nil, err
	}
	if job.Status == domain.JobStatusClosed {
		return nil, apperror.InvalidState("Closed jobs cannot be edited")
	}

	if upd.Title != nil && strings.TrimSpace(*upd.Title) == "" {
		return nil, apperror.Validation("Title cannot be empty")
	}
	if upd.Type != nil && !upd.Type.Valid() {
		return nil, apperror.Validation("Type must be one of full-time, part-time, contract, internship")
	}
	if upd.Salary != nil {
		if err := validateSalary(*upd.Salary); err != nil {
			return nil, err
		}
	}

	if err := u.jobs.Update(ctx, id, upd); err != nil {
		return nil, storeErr(err, "Job not found")
	}
	return u.load(ctx, id)
}

var transitionActions = map[string]policy.Action{
	domain.JobApprove{}.Name(): policy.JobApprove,
	domain.JobReject{}.Name():  policy.JobReject,
	domain.JobClose{}.Name():   policy.JobClose,
}

// Transition applies an API-initiated transition. Payment confirmation only
// arrives through the verified webhook and is refused here.
func (u *jobUsecase) Transition(ctx context.Context, id int64, t domain.JobTransition) (*domain.Job, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	action, ok := transitionActions[t.Name()]
	if !ok {
		return nil, apperror.Forbidden("Action not permitted")
	}
	job, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visible(p, job) {
		return nil, apperror.NotFound("Job not found")
	}
	if err := policy.Authorize(p, action, policy.Resource{Job: job}); err != nil {
		return nil, err
	}
	return u.apply(ctx, job, t)
}

// List is the public listing. Callers that are neither admin nor members of
// the filtered company only ever see active jobs.
func (u *jobUsecase) List(ctx context.Context, f domain.JobFilter) (*domain.Page[domain.Job], error) {
	p := domain.PrincipalFrom(ctx)
	privileged := p.IsAdmin() || (f.CompanyID != nil && p.BelongsTo(*f.CompanyID))
	if !privileged {
		f.Statuses = []domain.JobStatus{domain.JobStatusActive}
	}
	return u.list(ctx, f)
}

func (u *jobUsecase) ListForEmployer(ctx context.Context, f domain.JobFilter) (*domain.Page[domain.Job], error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	if p.Role != domain.RoleEmployer {
		return nil, apperror.Forbidden("Only employers can list their jobs")
	}
	if p.CompanyID == nil {
		return nil, apperror.InvalidState("Associate your account with a company first").WithReason(policy.ReasonCompanyRequired)
	}
	f.CompanyID = p.CompanyID
	return u.list(ctx, f)
}

func (u *jobUsecase) list(ctx context.Context, f domain.JobFilter) (*domain.Page[domain.Job], error) {
	for _, s := range f.Statuses {
		if !s.Valid() {
			return nil, apperror.Validation("Unknown job status " + string(s))
		}
	}
	if f.Type != "" && !f.Type.Valid() {
		return nil, apperror.Validation("Unknown job type " + string(f.Type))
	}
	f.PageRequest = f.PageRequest.Normalize()
	jobs, total, err := u.jobs.List(ctx, f)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return domain.NewPage(jobs, total, f.PageRequest), nil
}
