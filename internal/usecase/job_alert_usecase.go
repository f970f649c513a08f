package usecase

import (
	"context"

	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/internal/policy"
	"go-jobboard-backend/pkg/apperror"
)

const maxAlertsPerUser = 20

type jobAlertUsecase struct {
	alerts domain.JobAlertRepository
	jobs   domain.JobRepository
}

func NewJobAlertUsecase(alerts domain.JobAlertRepository, jobs domain.JobRepository) domain.JobAlertUsecase {
	return &jobAlertUsecase{alerts: alerts, jobs: jobs}
}

func validFrequency(f domain.AlertFrequency) bool {
	return f == domain.AlertFrequencyDaily || f == domain.AlertFrequencyWeekly
}

func (u *jobAlertUsecase) Create(ctx context.Context, a *domain.JobAlert) (*domain.JobAlert, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, policy.JobAlertManage, policy.Resource{}); err != nil {
		return nil, err
	}
	if a.Keywords == "" && a.Location == "" && a.Type == "" && a.MinSalary == 0 {
		return nil, apperror.Validation("An alert needs keywords, a location, a job type or a minimum salary")
	}
	if a.MinSalary < 0 {
		return nil, apperror.Validation("Minimum salary cannot be negative")
	}
	if a.Type != "" && !a.Type.Valid() {
		return nil, apperror.Validation("Unknown job type " + string(a.Type))
	}
	if a.Frequency == "" {
		a.Frequency = domain.AlertFrequencyDaily
	}
	if !validFrequency(a.Frequency) {
		return nil, apperror.Validation("Frequency must be daily or weekly")
	}

	existing, err := u.alerts.ListByUser(ctx, p.UserID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if len(existing) >= maxAlertsPerUser {
		return nil, apperror.InvalidState("Job alert limit reached")
	}

	a.UserID = p.UserID
	a.Active = true
	if err := u.alerts.Create(ctx, a); err != nil {
		return nil, storeErr(err, "Job alert not found")
	}
	return a, nil
}

// owned loads the alert and hides other users' alerts.
func (u *jobAlertUsecase) owned(ctx context.Context, id int64) (*domain.JobAlert, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	a, err := u.alerts.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Job alert not found")
	}
	if policy.Authorize(p, policy.JobAlertManage, policy.Resource{JobAlert: a}) != nil {
		return nil, apperror.NotFound("Job alert not found")
	}
	return a, nil
}

func (u *jobAlertUsecase) Update(ctx context.Context, id int64, upd domain.JobAlertUpdate) (*domain.JobAlert, error) {
	if _, err := u.owned(ctx, id); err != nil {
		return nil, err
	}
	if upd.Type != nil && *upd.Type != "" && !upd.Type.Valid() {
		return nil, apperror.Validation("Unknown job type " + string(*upd.Type))
	}
	if upd.MinSalary != nil && *upd.MinSalary < 0 {
		return nil, apperror.Validation("Minimum salary cannot be negative")
	}
	if upd.Frequency != nil && !validFrequency(*upd.Frequency) {
		return nil, apperror.Validation("Frequency must be daily or weekly")
	}
	if err := u.alerts.Update(ctx, id, upd); err != nil {
		return nil, storeErr(err, "Job alert not found")
	}
	a, err := u.alerts.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Job alert not found")
	}
	return a, nil
}

func (u *jobAlertUsecase) Delete(ctx context.Context, id int64) error {
	if _, err := u.owned(ctx, id); err != nil {
		return err
	}
	return storeErr(u.alerts.Delete(ctx, id), "Job alert not found")
}

func (u *jobAlertUsecase) List(ctx context.Context) ([]domain.JobAlert, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, policy.JobAlertManage, policy.Resource{}); err != nil {
		return nil, err
	}
	alerts, err := u.alerts.ListByUser(ctx, p.UserID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return alerts, nil
}

// Matches runs the alert's search now. Paused alerts still match, so users can
// preview an alert before turning it back on.
func (u *jobAlertUsecase) Matches(ctx context.Context, id int64, page domain.PageRequest) (*domain.Page[domain.Job], error) {
	a, err := u.owned(ctx, id)
	if err != nil {
		return nil, err
	}
	f := a.Filter(page.Normalize())
	jobs, total, err := u.jobs.List(ctx, f)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return domain.NewPage(jobs, total, f.PageRequest), nil
}
