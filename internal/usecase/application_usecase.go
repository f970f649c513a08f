package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/internal/policy"
	"go-jobboard-backend/pkg/apperror"
	"go-jobboard-backend/pkg/logger"
)

const (
	maxBulkItems = 100
	recentWindow = 7 * 24 * time.Hour
)

type applicationUsecase struct {
	applications domain.ApplicationRepository
	jobs         domain.JobRepository
	notices      *notices
	now          func() time.Time
}

func NewApplicationUsecase(applications domain.ApplicationRepository, jobs domain.JobRepository, users domain.UserRepository, companies domain.CompanyRepository, notifier domain.Notifier, frontendURL string) domain.ApplicationUsecase {
	return &applicationUsecase{
		applications: applications,
		jobs:         jobs,
		notices:      &notices{notifier: notifier, users: users, companies: companies, frontendURL: frontendURL},
		now:          time.Now,
	}
}

func (u *applicationUsecase) loadApp(ctx context.Context, id int64) (*domain.Application, error) {
	app, err := u.applications.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Application not found")
	}
	return app, nil
}

// adjustCount moves the job's application counter. The application row is
// already committed, so a failure only leaves drift for the reconciler.
func (u *applicationUsecase) adjustCount(ctx context.Context, jobID int64, delta int) {
	if err := u.jobs.IncrementApplicationCount(ctx, jobID, delta); err != nil {
		logger.Log.Warn("application count update failed, left for reconciliation", "job_id", jobID, "delta", delta, "error", err)
	}
}

// --- Seeker operations ---

func (u *applicationUsecase) Apply(ctx context.Context, jobID int64, resume, coverLetter string) (*domain.Application, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	job, err := u.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, storeErr(err, "Job not found")
	}
	if err := policy.Authorize(p, policy.ApplicationCreate, policy.Resource{Job: job}); err != nil {
		return nil, err
	}
	resume = strings.TrimSpace(resume)
	if resume == "" {
		return nil, apperror.Validation("Resume is required")
	}

	app := &domain.Application{
		JobID:       jobID,
		ApplicantID: p.UserID,
		Resume:      resume,
		Status:      domain.ApplicationStatusPending,
	}
	if cl := strings.TrimSpace(coverLetter); cl != "" {
		app.CoverLetter = &cl
	}
	if err := u.applications.Create(ctx, app); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, apperror.AlreadyExists("You have already applied to this job").WithReason("already_applied")
		}
		return nil, storeErr(err, "Job not found")
	}
	u.adjustCount(ctx, jobID, 1)
	logger.Log.Info("application submitted", "application_id", app.ID, "job_id", jobID, "user_id", p.UserID)

	data := jobData(job)
	data["CompanyName"] = derefOr(job.CompanyName, "")
	u.notices.send(ctx, domain.TemplateApplicationReceived, p.Email, data)
	owners := jobData(job)
	owners["ApplicantName"] = p.Email
	if applicant, err := u.notices.users.GetByID(ctx, p.UserID); err == nil && applicant.Name != "" {
		owners["ApplicantName"] = applicant.Name
	}
	u.notices.toCompanyOwners(ctx, domain.TemplateNewApplication, job.CompanyID, owners)

	created, err := u.loadApp(ctx, app.ID)
	if err != nil {
		return nil, err
	}
	return applicantView(created), nil
}

func applicantView(a *domain.Application) *domain.Application {
	v := a.ForApplicant()
	return &v
}

// ownApplication loads an application owned by p. Other users' applications
// are reported as missing.
func (u *applicationUsecase) ownApplication(ctx context.Context, p *domain.Principal, id int64) (*domain.Application, error) {
	app, err := u.loadApp(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.ApplicantID != p.UserID {
		return nil, apperror.NotFound("Application not found")
	}
	return app, nil
}

func (u *applicationUsecase) Withdraw(ctx context.Context, id int64) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}
	app, err := u.planWithdraw(ctx, p, id)
	if err != nil {
		return err
	}
	return u.withdraw(ctx, p, app)
}

func (u *applicationUsecase) planWithdraw(ctx context.Context, p *domain.Principal, id int64) (*domain.Application, error) {
	app, err := u.ownApplication(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, policy.ApplicationWithdraw, policy.Resource{Application: app}); err != nil {
		return nil, err
	}
	return app, nil
}

func (u *applicationUsecase) withdraw(ctx context.Context, p *domain.Principal, app *domain.Application) error {
	deleted, err := u.applications.DeleteIf(ctx, app.ID, p.UserID, domain.WithdrawableStatuses)
	if err != nil {
		return storeErr(err, "Application not found")
	}
	if deleted == nil {
		// Status moved or the row is already gone.
		if _, err := u.loadApp(ctx, app.ID); err != nil {
			return err
		}
		return apperror.InvalidState("Application can no longer be withdrawn")
	}
	u.adjustCount(ctx, deleted.JobID, -1)
	logger.Log.Info("application withdrawn", "application_id", app.ID, "job_id", deleted.JobID, "user_id", p.UserID)
	return nil
}

func (u *applicationUsecase) BulkWithdraw(ctx context.Context, req domain.BulkRequest) (*domain.BulkResult, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	plan := func(ctx context.Context, id int64) (*domain.Application, error) {
		return u.planWithdraw(ctx, p, id)
	}
	exec := func(ctx context.Context, app *domain.Application) (string, error) {
		if err := u.withdraw(ctx, p, app); err != nil {
			return "", err
		}
		return domain.BulkOutcomeAffected, nil
	}
	return runBulk(ctx, req, plan, exec)
}

func (u *applicationUsecase) UpdateByApplicant(ctx context.Context, id int64, upd domain.ApplicantUpdate) (*domain.Application, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	app, err := u.ownApplication(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, policy.ApplicationUpdateByApplicant, policy.Resource{Application: app}); err != nil {
		return nil, err
	}
	if upd.Resume != nil && strings.TrimSpace(*upd.Resume) == "" {
		return nil, apperror.Validation("Resume cannot be empty")
	}

	changed, err := u.applications.UpdateByApplicantIf(ctx, id, p.UserID, domain.WithdrawableStatuses, upd)
	if err != nil {
		return nil, storeErr(err, "Application not found")
	}
	if !changed {
		return nil, apperror.InvalidState("Application can no longer be changed in its current status")
	}
	updated, err := u.loadApp(ctx, id)
	if err != nil {
		return nil, err
	}
	return applicantView(updated), nil
}

func (u *applicationUsecase) ListMine(ctx context.Context, f domain.ApplicationFilter) (*domain.Page[domain.Application], error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, policy.ApplicationListOwn, policy.Resource{}); err != nil {
		return nil, err
	}
	f.ApplicantID = p.UserID
	f.CompanyID = nil
	page, err := u.list(ctx, f)
	if err != nil {
		return nil, err
	}
	for i := range page.Items {
		page.Items[i] = page.Items[i].ForApplicant()
	}
	return page, nil
}

func (u *applicationUsecase) Check(ctx context.Context, jobID int64) (*domain.ApplicationCheck, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	app, err := u.applications.GetByJobAndApplicant(ctx, jobID, p.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.ApplicationCheck{}, nil
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &domain.ApplicationCheck{HasApplied: true, Application: applicantView(app)}, nil
}

func (u *applicationUsecase) Stats(ctx context.Context) (*domain.ApplicationStats, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, policy.ApplicationListOwn, policy.Resource{}); err != nil {
		return nil, err
	}
	counts, recent, err := u.applications.CountByStatus(ctx, p.UserID, u.now().Add(-recentWindow))
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return buildStats(counts, recent), nil
}

func buildStats(counts map[domain.ApplicationStatus]int64, recent int64) *domain.ApplicationStats {
	s := &domain.ApplicationStats{
		Pending:            counts[domain.ApplicationStatusPending],
		Reviewing:          counts[domain.ApplicationStatusReviewing],
		Shortlisted:        counts[domain.ApplicationStatusShortlisted],
		Accepted:           counts[domain.ApplicationStatusAccepted],
		Rejected:           counts[domain.ApplicationStatusRejected],
		RecentApplications: recent,
	}
	s.Total = s.Pending + s.Reviewing + s.Shortlisted + s.Accepted + s.Rejected
	if s.Total > 0 {
		responded := s.Shortlisted + s.Accepted + s.Rejected
		s.ResponseRate = int(math.Round(float64(responded) * 100 / float64(s.Total)))
	}
	return s
}

// --- Shared ---

// Get returns an application to its applicant, the hiring company or an
// admin. The first read by the hiring company marks it viewed.
func (u *applicationUsecase) Get(ctx context.Context, id int64) (*domain.Application, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	app, job, err := u.readable(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if p.BelongsTo(job.CompanyID) {
		if !app.Viewed {
			if err := u.applications.MarkViewed(ctx, id); err != nil {
				logger.Log.Warn("failed to mark application viewed", "application_id", id, "error", err)
			} else {
				app.Viewed = true
			}
		}
		return app, nil
	}
	if p.IsAdmin() {
		return app, nil
	}
	return applicantView(app), nil
}

// readable loads the application with its job and hides it from anyone the
// read policy rejects.
func (u *applicationUsecase) readable(ctx context.Context, p *domain.Principal, id int64) (*domain.Application, *domain.Job, error) {
	app, err := u.loadApp(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	job, err := u.jobs.GetByID(ctx, app.JobID)
	if err != nil {
		return nil, nil, storeErr(err, "Application not found")
	}
	if policy.Authorize(p, policy.ApplicationRead, policy.Resource{Application: app, Job: job}) != nil {
		return nil, nil, apperror.NotFound("Application not found")
	}
	return app, job, nil
}

// --- Employer operations ---

func (u *applicationUsecase) UpdateStatus(ctx context.Context, id int64, upd domain.ApplicationStatusUpdate) (*domain.Application, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	if !upd.Status.Valid() {
		return nil, apperror.Validation("Unknown application status " + string(upd.Status))
	}
	target, err := u.planStatus(ctx, p, id, upd.Status)
	if err != nil {
		return nil, err
	}
	app, _, err := u.setStatus(ctx, target, upd)
	return app, err
}

// statusTarget is an application resolved for an employer status change.
type statusTarget struct {
	app *domain.Application
	job *domain.Job
}

func (u *applicationUsecase) planStatus(ctx context.Context, p *domain.Principal, id int64, to domain.ApplicationStatus) (*statusTarget, error) {
	app, job, err := u.readable(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, policy.ApplicationUpdateStatus, policy.Resource{Application: app, Job: job}); err != nil {
		return nil, err
	}
	if app.Status != to && !domain.CanTransitionApplication(app.Status, to) {
		return nil, apperror.InvalidState(fmt.Sprintf("Application cannot move from %s to %s", app.Status, to))
	}
	return &statusTarget{app: app, job: job}, nil
}

// setStatus persists a planned status change. Reapplying the current status
// only updates notes and never notifies. It reports whether the status changed.
func (u *applicationUsecase) setStatus(ctx context.Context, t *statusTarget, upd domain.ApplicationStatusUpdate) (*domain.Application, bool, error) {
	id := t.app.ID
	if t.app.Status == upd.Status {
		if upd.Notes != nil {
			if err := u.applications.UpdateNotes(ctx, id, upd.Notes); err != nil {
				return nil, false, storeErr(err, "Application not found")
			}
		}
		app, err := u.loadApp(ctx, id)
		return app, false, err
	}

	changed, err := u.applications.UpdateStatusIf(ctx, id, t.app.Status, upd)
	if err != nil {
		return nil, false, storeErr(err, "Application not found")
	}
	app, err := u.loadApp(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if !changed {
		if app.Status == upd.Status {
			return app, false, nil
		}
		return nil, false, apperror.Conflict("Application was updated concurrently, reload and retry")
	}

	logger.Log.Info("application status changed", "application_id", id, "job_id", t.job.ID, "from", t.app.Status, "to", upd.Status)
	data := jobData(t.job)
	data["Status"] = string(upd.Status)
	data["CompanyName"] = derefOr(t.job.CompanyName, "")
	u.notices.toUser(ctx, domain.TemplateApplicationStatus, app.ApplicantID, data)
	return app, true, nil
}

func (u *applicationUsecase) BulkUpdateStatus(ctx context.Context, req domain.BulkRequest) (*domain.BulkResult, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	if !req.Status.Valid() {
		return nil, apperror.Validation("Unknown application status " + string(req.Status))
	}
	upd := domain.ApplicationStatusUpdate{Status: req.Status, Notes: req.Notes}
	plan := func(ctx context.Context, id int64) (*statusTarget, error) {
		return u.planStatus(ctx, p, id, req.Status)
	}
	exec := func(ctx context.Context, t *statusTarget) (string, error) {
		_, changed, err := u.setStatus(ctx, t, upd)
		if err != nil {
			return "", err
		}
		if !changed {
			return domain.BulkOutcomeUnchanged, nil
		}
		return domain.BulkOutcomeAffected, nil
	}
	return runBulk(ctx, req, plan, exec)
}

func (u *applicationUsecase) ListForJob(ctx context.Context, jobID int64, f domain.ApplicationFilter) (*domain.Page[domain.Application], error) {
	if _, err := u.pipelineJob(ctx, jobID); err != nil {
		return nil, err
	}
	f.JobID = &jobID
	f.ApplicantID = ""
	f.CompanyID = nil
	return u.list(ctx, f)
}

// pipelineJob resolves a job whose applicants the caller may see. Jobs of
// other companies are reported as missing.
func (u *applicationUsecase) pipelineJob(ctx context.Context, jobID int64) (*domain.Job, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	job, err := u.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, storeErr(err, "Job not found")
	}
	if policy.Authorize(p, policy.JobViewPipeline, policy.Resource{Job: job}) != nil {
		if p.Role == domain.RoleEmployer || p.IsAdmin() {
			return nil, apperror.NotFound("Job not found")
		}
		return nil, apperror.Forbidden("Only employers can view applicants")
	}
	return job, nil
}

// --- Admin ---

func (u *applicationUsecase) ListAll(ctx context.Context, f domain.ApplicationFilter) (*domain.Page[domain.Application], error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, policy.AdminRead, policy.Resource{}); err != nil {
		return nil, err
	}
	return u.list(ctx, f)
}

func (u *applicationUsecase) list(ctx context.Context, f domain.ApplicationFilter) (*domain.Page[domain.Application], error) {
	for _, s := range f.Statuses {
		if !s.Valid() {
			return nil, apperror.Validation("Unknown application status " + string(s))
		}
	}
	f.PageRequest = f.PageRequest.Normalize()
	items, total, err := u.applications.List(ctx, f)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return domain.NewPage(items, total, f.PageRequest), nil
}

// runBulk evaluates every item with plan before executing any of them, so an
// all_or_nothing batch is refused without side effects. Client-facing errors
// become skipped items; internal errors abort the batch.
func runBulk[T any](ctx context.Context, req domain.BulkRequest, plan func(context.Context, int64) (T, error), exec func(context.Context, T) (string, error)) (*domain.BulkResult, error) {
	ids, err := bulkIDs(req.IDs)
	if err != nil {
		return nil, err
	}

	type planned struct {
		target T
		skip   string
	}
	plans := make([]planned, len(ids))
	skipped := 0
	for i, id := range ids {
		target, err := plan(ctx, id)
		if err != nil {
			if apperror.KindOf(err) == apperror.KindInternal {
				return nil, err
			}
			plans[i].skip = string(apperror.KindOf(err))
			skipped++
			continue
		}
		plans[i].target = target
	}
	if req.AllOrNothing && skipped > 0 {
		return nil, apperror.InvalidState(fmt.Sprintf("%d of %d items cannot be processed, nothing was changed", skipped, len(ids))).WithReason("all_or_nothing")
	}

	res := &domain.BulkResult{Items: make([]domain.BulkItemResult, 0, len(ids))}
	for i, id := range ids {
		item := domain.BulkItemResult{ID: id}
		if plans[i].skip != "" {
			item.Outcome, item.Reason = domain.BulkOutcomeSkipped, plans[i].skip
		} else {
			outcome, err := exec(ctx, plans[i].target)
			switch {
			case err == nil:
				item.Outcome = outcome
			case apperror.KindOf(err) == apperror.KindInternal:
				return nil, err
			default:
				item.Outcome, item.Reason = domain.BulkOutcomeSkipped, string(apperror.KindOf(err))
			}
		}
		switch item.Outcome {
		case domain.BulkOutcomeAffected:
			res.Affected++
		case domain.BulkOutcomeSkipped:
			res.Skipped++
		}
		res.Items = append(res.Items, item)
	}
	return res, nil
}

func bulkIDs(ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, apperror.Validation("At least one id is required")
	}
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	if len(out) > maxBulkItems {
		return nil, apperror.Validation(fmt.Sprintf("At most %d ids per request", maxBulkItems))
	}
	return out, nil
}
