package usecase_test

import (
	"math"
	"sync"
	"testing"

	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/internal/policy"
	"go-jobboard-backend/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobCreate(t *testing.T) {
	f := newFixture(t)

	job := f.pendingJob(t, "Backend Engineer")
	assert.Equal(t, domain.JobStatusPending, job.Status)
	assert.Equal(t, f.company.ID, job.CompanyID)
	assert.Zero(t, job.ApplicationCount)
	require.NotNil(t, job.CompanyName)
	assert.Equal(t, "Acme", *job.CompanyName)

	_, err := f.jobs.Create(as(f.loneEmployerP), &domain.Job{Title: "x", Description: "y", Type: domain.JobTypeContract})
	assert.Equal(t, apperror.KindInvalidState, kindOf(err))
	assert.Equal(t, policy.ReasonCompanyRequired, reasonOf(err))

	_, err = f.jobs.Create(as(f.seekerP), &domain.Job{Title: "x", Description: "y", Type: domain.JobTypeContract})
	assert.Equal(t, apperror.KindForbidden, kindOf(err))

	_, err = f.jobs.Create(as(f.employerP), &domain.Job{Title: "x", Description: "y", Type: domain.JobTypeContract, Salary: domain.Salary{Min: 10, Max: 5}})
	assert.Equal(t, apperror.KindValidation, kindOf(err))
}

func TestJobCreateRequiresVerifiedCompany(t *testing.T) {
	f := newFixture(t)
	ctx := as(f.loneEmployerP)
	company, err := f.companies.Create(ctx, &domain.Company{Name: "Startup"})
	require.NoError(t, err)
	assert.False(t, company.IsVerified)

	lone := *f.loneEmployerP
	lone.CompanyID = &company.ID
	_, err = f.jobs.Create(as(&lone), &domain.Job{Title: "x", Description: "y", Type: domain.JobTypeInternship})
	assert.Equal(t, apperror.KindForbidden, kindOf(err))
	assert.Equal(t, policy.ReasonCompanyUnverified, reasonOf(err))

	_, err = f.companies.Review(as(f.adminP), company.ID, domain.CompanyActionVerify)
	require.NoError(t, err)
	_, err = f.jobs.Create(as(&lone), &domain.Job{Title: "x", Description: "y", Type: domain.JobTypeInternship})
	assert.NoError(t, err)
}

func TestJobTransitions(t *testing.T) {
	f := newFixture(t)
	job := f.pendingJob(t, "Backend Engineer")

	_, err := f.jobs.Transition(as(f.employerP), job.ID, domain.JobApprove{})
	assert.Equal(t, apperror.KindForbidden, kindOf(err))

	approved, err := f.jobs.Transition(as(f.adminP), job.ID, domain.JobApprove{})
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusActive, approved.Status)
	f.notifier.AssertCalled(t, "Notify", domain.TemplateJobApproved, "emp-a@example.com")

	// Approving again is a no-op.
	again, err := f.jobs.Transition(as(f.adminP), job.ID, domain.JobApprove{})
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusActive, again.Status)
	assert.Equal(t, 1, f.notifier.sent(domain.TemplateJobApproved))

	_, err = f.jobs.Transition(as(f.employer2P), job.ID, domain.JobClose{})
	assert.Equal(t, apperror.KindForbidden, kindOf(err))

	closed, err := f.jobs.Transition(as(f.employerP), job.ID, domain.JobClose{})
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusClosed, closed.Status)

	_, err = f.jobs.Transition(as(f.adminP), job.ID, domain.JobApprove{})
	assert.Equal(t, apperror.KindInvalidState, kindOf(err))

	_, err = f.jobs.Transition(as(f.adminP), job.ID, domain.JobPaymentConfirmed{Featured: true})
	assert.Equal(t, apperror.KindForbidden, kindOf(err))

	title := "Reopened?"
	_, err = f.jobs.Update(as(f.employerP), job.ID, domain.JobUpdate{Title: &title})
	assert.Equal(t, apperror.KindInvalidState, kindOf(err))
}

func TestJobRejectNotifiesOwners(t *testing.T) {
	f := newFixture(t)
	job := f.pendingJob(t, "Backend Engineer")

	rejected, err := f.jobs.Transition(as(f.adminP), job.ID, domain.JobReject{})
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusClosed, rejected.Status)
	f.notifier.AssertCalled(t, "Notify", domain.TemplateJobRejected, "emp-a@example.com")
}

func TestJobConcurrentApproveReject(t *testing.T) {
	f := newFixture(t)
	job := f.pendingJob(t, "Backend Engineer")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, tr := range []domain.JobTransition{domain.JobApprove{}, domain.JobReject{}} {
		wg.Add(1)
		go func(i int, tr domain.JobTransition) {
			defer wg.Done()
			_, errs[i] = f.jobs.Transition(as(f.adminP), job.ID, tr)
		}(i, tr)
	}
	wg.Wait()

	// The loser either observes the decided state or, if it loaded the job
	// after the winner committed, is told the move is no longer legal.
	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.Equal(t, apperror.KindInvalidState, kindOf(err))
	}
	assert.GreaterOrEqual(t, succeeded, 1)

	final, err := f.store.Jobs().GetByID(as(nil), job.ID)
	require.NoError(t, err)
	assert.Contains(t, []domain.JobStatus{domain.JobStatusActive, domain.JobStatusClosed}, final.Status)
	assert.Equal(t, 1, f.notifier.sent(domain.TemplateJobApproved)+f.notifier.sent(domain.TemplateJobRejected))
}

func TestJobVisibilityAndViews(t *testing.T) {
	f := newFixture(t)
	pending := f.pendingJob(t, "Hidden")

	_, err := f.jobs.Get(as(nil), pending.ID)
	assert.Equal(t, apperror.KindNotFound, kindOf(err))
	_, err = f.jobs.Get(as(f.employer2P), pending.ID)
	assert.Equal(t, apperror.KindNotFound, kindOf(err))

	own, err := f.jobs.Get(as(f.employerP), pending.ID)
	require.NoError(t, err)
	assert.Zero(t, own.Views)

	_, err = f.jobs.Get(as(f.adminP), pending.ID)
	require.NoError(t, err)

	active := f.activeJob(t, "Visible")
	for range 3 {
		_, err := f.jobs.Get(as(nil), active.ID)
		require.NoError(t, err)
	}
	viewed, err := f.jobs.Get(as(f.employerP), active.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, viewed.Views)
}

func TestJobListVisibility(t *testing.T) {
	f := newFixture(t)
	f.pendingJob(t, "Pending role")
	f.activeJob(t, "Go Developer")
	f.activeJob(t, "Rust Developer")

	page, err := f.jobs.List(as(nil), domain.JobFilter{Statuses: []domain.JobStatus{domain.JobStatusPending}})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.TotalCount)
	for _, j := range page.Items {
		assert.Equal(t, domain.JobStatusActive, j.Status)
	}

	small, err := f.jobs.List(as(nil), domain.JobFilter{PageRequest: domain.PageRequest{Page: 1, PageSize: 1}})
	require.NoError(t, err)
	assert.Len(t, small.Items, 1)
	assert.EqualValues(t, 2, small.TotalCount)
	assert.Equal(t, 2, small.PageCount)

	search, err := f.jobs.List(as(f.seekerP), domain.JobFilter{Search: "go dev"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, search.TotalCount)

	companyID := f.company.ID
	own, err := f.jobs.List(as(f.employerP), domain.JobFilter{CompanyID: &companyID})
	require.NoError(t, err)
	assert.EqualValues(t, 3, own.TotalCount)

	mine, err := f.jobs.ListForEmployer(as(f.employerP), domain.JobFilter{Statuses: []domain.JobStatus{domain.JobStatusPending}})
	require.NoError(t, err)
	assert.EqualValues(t, 1, mine.TotalCount)

	other, err := f.jobs.ListForEmployer(as(f.employer2P), domain.JobFilter{})
	require.NoError(t, err)
	assert.Zero(t, other.TotalCount)

	queue, err := f.admin.ListJobs(as(f.adminP), domain.JobFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, queue.TotalCount)
}

func TestJobListHugePage(t *testing.T) {
	f := newFixture(t)
	f.activeJob(t, "Backend Engineer")

	page, err := f.jobs.List(as(nil), domain.JobFilter{PageRequest: domain.PageRequest{Page: math.MaxInt / 5, PageSize: 10}})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, int64(1), page.TotalCount)
	assert.Equal(t, domain.MaxPage, page.Page)

	page, err = f.jobs.List(as(nil), domain.JobFilter{PageRequest: domain.PageRequest{Page: math.MaxInt, PageSize: math.MaxInt}})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, domain.MaxPageSize, page.PageSize)
}

func TestJobUpdate(t *testing.T) {
	f := newFixture(t)
	job := f.pendingJob(t, "Backend Engineer")

	title := "Senior Backend Engineer"
	updated, err := f.jobs.Update(as(f.employerP), job.ID, domain.JobUpdate{Title: &title, Skills: []string{"go"}})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, []string{"go"}, updated.Skills)
	assert.Equal(t, domain.JobStatusPending, updated.Status)

	_, err = f.jobs.Update(as(f.employer2P), job.ID, domain.JobUpdate{Title: &title})
	assert.Equal(t, apperror.KindNotFound, kindOf(err))

	bad := domain.JobType("gig")
	_, err = f.jobs.Update(as(f.employerP), job.ID, domain.JobUpdate{Type: &bad})
	assert.Equal(t, apperror.KindValidation, kindOf(err))
}
