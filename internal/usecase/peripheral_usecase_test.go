package usecase_test

import (
	"context"
	"errors"
	"testing"

	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/internal/usecase"
	"go-jobboard-backend/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSavedJobs(t *testing.T) {
	f := newFixture(t)
	job := f.activeJob(t, "Backend Engineer")
	pending := f.pendingJob(t, "Hidden")
	seeker := as(f.seekerP)

	saved, err := f.saved.Save(seeker, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, saved.JobID)

	_, err = f.saved.Save(seeker, job.ID)
	assert.Equal(t, apperror.KindAlreadyExists, kindOf(err))

	_, err = f.saved.Save(seeker, pending.ID)
	assert.Equal(t, apperror.KindNotFound, kindOf(err))

	page, err := f.saved.List(seeker, domain.PageRequest{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.NotNil(t, page.Items[0].Job)
	assert.Equal(t, "Backend Engineer", page.Items[0].Job.Title)

	require.NoError(t, f.saved.Remove(seeker, job.ID))
	assert.Equal(t, apperror.KindNotFound, kindOf(f.saved.Remove(seeker, job.ID)))

	_, err = f.saved.List(as(nil), domain.PageRequest{})
	assert.Equal(t, apperror.KindUnauthenticated, kindOf(err))
}

func TestJobAlerts(t *testing.T) {
	f := newFixture(t)
	seeker := as(f.seekerP)

	alert, err := f.alerts.Create(seeker, &domain.JobAlert{Keywords: "golang", Type: domain.JobTypeFullTime})
	require.NoError(t, err)
	assert.Equal(t, domain.AlertFrequencyDaily, alert.Frequency)
	assert.True(t, alert.Active)

	_, err = f.alerts.Create(seeker, &domain.JobAlert{})
	assert.Equal(t, apperror.KindValidation, kindOf(err))

	weekly := domain.AlertFrequencyWeekly
	updated, err := f.alerts.Update(seeker, alert.ID, domain.JobAlertUpdate{Frequency: &weekly})
	require.NoError(t, err)
	assert.Equal(t, domain.AlertFrequencyWeekly, updated.Frequency)

	_, err = f.alerts.Update(as(f.seeker2P), alert.ID, domain.JobAlertUpdate{Frequency: &weekly})
	assert.Equal(t, apperror.KindNotFound, kindOf(err))

	list, err := f.alerts.List(seeker)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	assert.Equal(t, apperror.KindNotFound, kindOf(f.alerts.Delete(as(f.seeker2P), alert.ID)))
	require.NoError(t, f.alerts.Delete(seeker, alert.ID))
	list, err = f.alerts.List(seeker)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.alerts.Create(seeker, &domain.JobAlert{MinSalary: -1})
	assert.Equal(t, apperror.KindValidation, kindOf(err))
}

func TestJobAlertMatches(t *testing.T) {
	f := newFixture(t)
	seeker := as(f.seekerP)

	f.activeJob(t, "Go Engineer")
	f.pendingJob(t, "Go Intern")
	senior, err := f.jobs.Create(as(f.employerP), &domain.Job{
		Title:       "Senior Go Engineer",
		Description: "Lead the platform team",
		Location:    "Remote",
		Type:        domain.JobTypeFullTime,
		Salary:      domain.Salary{Min: 5000, Max: 8000, Currency: "USD"},
	})
	require.NoError(t, err)
	_, err = f.jobs.Transition(as(f.adminP), senior.ID, domain.JobApprove{})
	require.NoError(t, err)

	alert, err := f.alerts.Create(seeker, &domain.JobAlert{Keywords: "go", MinSalary: 3000})
	require.NoError(t, err)
	assert.Equal(t, 3000.0, alert.MinSalary)

	page, err := f.alerts.Matches(seeker, alert.ID, domain.PageRequest{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, senior.ID, page.Items[0].ID)

	lower := 0.0
	_, err = f.alerts.Update(seeker, alert.ID, domain.JobAlertUpdate{MinSalary: &lower})
	require.NoError(t, err)
	page, err = f.alerts.Matches(seeker, alert.ID, domain.PageRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.TotalCount)

	_, err = f.alerts.Matches(as(f.seeker2P), alert.ID, domain.PageRequest{})
	assert.Equal(t, apperror.KindNotFound, kindOf(err))
}

func TestAdminStats(t *testing.T) {
	f := newFixture(t)
	job := f.activeJob(t, "Backend Engineer")
	f.pendingJob(t, "Pending")
	_, err := f.applications.Apply(as(f.seekerP), job.ID, "cv", "")
	require.NoError(t, err)

	stats, err := f.admin.GetStats(as(f.adminP))
	require.NoError(t, err)
	assert.EqualValues(t, 6, stats.TotalUsers)
	assert.EqualValues(t, 2, stats.TotalJobs)
	assert.EqualValues(t, 1, stats.ActiveJobs)
	assert.EqualValues(t, 1, stats.PendingJobs)
	assert.EqualValues(t, 1, stats.TotalApplications)
	assert.EqualValues(t, 2, stats.TotalCompanies)

	_, err = f.admin.GetStats(as(f.seekerP))
	assert.Equal(t, apperror.KindForbidden, kindOf(err))
}

func TestUserRegistration(t *testing.T) {
	f := newFixture(t)
	users := usecase.NewUserUsecase(f.store.Users())
	ctx := context.Background()

	u, err := users.Register(ctx, "new-user", "New@Example.com", "New User", domain.RoleSeeker)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", u.Email)

	_, err = users.Register(ctx, "new-user", "new@example.com", "New User", domain.RoleSeeker)
	assert.Equal(t, apperror.KindAlreadyExists, kindOf(err))

	_, err = users.Register(ctx, "sneaky", "sneaky@example.com", "Sneaky", domain.RoleAdmin)
	assert.Equal(t, apperror.KindValidation, kindOf(err))

	_, err = users.UpdateProfile(as(u.Principal()), "")
	assert.Equal(t, apperror.KindValidation, kindOf(err))

	renamed, err := users.UpdateProfile(as(u.Principal()), "Renamed")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", renamed.Name)
}

func TestHealthCheck(t *testing.T) {
	healthy := usecase.NewHealthUsecase(map[string]usecase.HealthCheck{
		"database": func(context.Context) error { return nil },
	})
	status, ok := healthy.Check(context.Background())
	assert.True(t, ok)
	assert.Equal(t, "ok", status["database"])

	degraded := usecase.NewHealthUsecase(map[string]usecase.HealthCheck{
		"database": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("dial tcp: refused") },
	})
	status, ok = degraded.Check(context.Background())
	assert.False(t, ok)
	assert.Equal(t, "degraded", status["status"])
	assert.Equal(t, "unavailable", status["redis"])
}
