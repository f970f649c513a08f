package usecase_test

import (
	"bytes"
	"encoding/csv"
	"strings"
	"sync"
	"testing"

	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyWithdrawReapply(t *testing.T) {
	f := newFixture(t)
	job := f.activeJob(t, "Backend Engineer")
	seeker := as(f.seekerP)

	app, err := f.applications.Apply(seeker, job.ID, "https://cv.example.com/s.pdf", "Hello")
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationStatusPending, app.Status)
	assert.EqualValues(t, 1, f.jobCount(t, job.ID))

	_, err = f.applications.Apply(seeker, job.ID, "https://cv.example.com/s.pdf", "")
	assert.Equal(t, apperror.KindAlreadyExists, kindOf(err))
	assert.EqualValues(t, 1, f.jobCount(t, job.ID))

	require.NoError(t, f.applications.Withdraw(seeker, app.ID))
	assert.EqualValues(t, 0, f.jobCount(t, job.ID))

	again, err := f.applications.Apply(seeker, job.ID, "https://cv.example.com/s2.pdf", "")
	require.NoError(t, err)
	assert.NotEqual(t, app.ID, again.ID)
	assert.Equal(t, domain.ApplicationStatusPending, again.Status)
	assert.EqualValues(t, 1, f.jobCount(t, job.ID))

	assert.Equal(t, 2, f.notifier.sent(domain.TemplateApplicationReceived))
	f.notifier.AssertCalled(t, "Notify", domain.TemplateNewApplication, "emp-a@example.com")
}

func TestApplyConcurrentDuplicates(t *testing.T) {
	f := newFixture(t)
	job := f.activeJob(t, "Backend Engineer")

	const n = 20
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.applications.Apply(as(f.seekerP), job.ID, "https://cv.example.com/s.pdf", "")
		}(i)
	}
	wg.Wait()

	ok, dup := 0, 0
	for _, err := range errs {
		switch kindOf(err) {
		case "":
			ok++
		case apperror.KindAlreadyExists:
			dup++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, dup)
	assert.EqualValues(t, 1, f.jobCount(t, job.ID))
}

func TestApplyPreconditions(t *testing.T) {
	f := newFixture(t)
	pending := f.pendingJob(t, "Not yet approved")

	_, err := f.applications.Apply(as(f.seekerP), pending.ID, "cv", "")
	assert.Equal(t, apperror.KindInvalidState, kindOf(err))

	_, err = f.applications.Apply(as(f.seekerP), 9999, "cv", "")
	assert.Equal(t, apperror.KindNotFound, kindOf(err))

	active := f.activeJob(t, "Open role")
	_, err = f.applications.Apply(as(f.employer2P), active.ID, "cv", "")
	assert.Equal(t, apperror.KindForbidden, kindOf(err))

	_, err = f.applications.Apply(as(nil), active.ID, "cv", "")
	assert.Equal(t, apperror.KindUnauthenticated, kindOf(err))

	_, err = f.applications.Apply(as(f.seekerP), active.ID, "  ", "")
	assert.Equal(t, apperror.KindValidation, kindOf(err))
}

func TestCounterFailureIsRepairedByReconciler(t *testing.T) {
	f := newFixture(t)
	job := f.activeJob(t, "Backend Engineer")

	f.jobsRepo.failCounter = true
	_, err := f.applications.Apply(as(f.seekerP), job.ID, "cv", "")
	require.NoError(t, err)
	_, err = f.applications.Apply(as(f.seeker2P), job.ID, "cv", "")
	require.NoError(t, err)
	assert.EqualValues(t, 0, f.jobCount(t, job.ID))

	fixed, err := f.reconciler.RunOnce(as(nil))
	require.NoError(t, err)
	assert.Zero(t, fixed, "first pass only observes")
	assert.EqualValues(t, 0, f.jobCount(t, job.ID))

	fixed, err = f.reconciler.RunOnce(as(nil))
	require.NoError(t, err)
	assert.EqualValues(t, 1, fixed)
	assert.EqualValues(t, 2, f.jobCount(t, job.ID))
}

func TestReconcilerLeavesInFlightCounterAlone(t *testing.T) {
	f := newFixture(t)
	job := f.activeJob(t, "Backend Engineer")

	// application row committed, counter increment not yet applied
	require.NoError(t, f.store.Applications().Create(as(nil), &domain.Application{
		JobID: job.ID, ApplicantID: "seeker", Resume: "cv", Status: domain.ApplicationStatusPending,
	}))
	fixed, err := f.reconciler.RunOnce(as(nil))
	require.NoError(t, err)
	assert.Zero(t, fixed)

	// the increment lands between passes
	require.NoError(t, f.store.Jobs().IncrementApplicationCount(as(nil), job.ID, 1))
	fixed, err = f.reconciler.RunOnce(as(nil))
	require.NoError(t, err)
	assert.Zero(t, fixed)
	assert.EqualValues(t, 1, f.jobCount(t, job.ID))

	// a second apply caught mid-flight on the confirming pass is not overwritten
	require.NoError(t, f.store.Applications().Create(as(nil), &domain.Application{
		JobID: job.ID, ApplicantID: "seeker2", Resume: "cv", Status: domain.ApplicationStatusPending,
	}))
	_, err = f.reconciler.RunOnce(as(nil))
	require.NoError(t, err)
	require.NoError(t, f.store.Jobs().IncrementApplicationCount(as(nil), job.ID, 1))
	fixed, err = f.reconciler.RunOnce(as(nil))
	require.NoError(t, err)
	assert.Zero(t, fixed)
	assert.EqualValues(t, 2, f.jobCount(t, job.ID))
}

func TestWithdrawRules(t *testing.T) {
	f := newFixture(t)
	job := f.activeJob(t, "Backend Engineer")
	app, err := f.applications.Apply(as(f.seekerP), job.ID, "cv", "")
	require.NoError(t, err)

	err = f.applications.Withdraw(as(f.seeker2P), app.ID)
	assert.Equal(t, apperror.KindNotFound, kindOf(err))

	_, err = f.applications.UpdateStatus(as(f.employerP), app.ID, domain.ApplicationStatusUpdate{Status: domain.ApplicationStatusShortlisted})
	require.NoError(t, err)

	err = f.applications.Withdraw(as(f.seekerP), app.ID)
	assert.Equal(t, apperror.KindInvalidState, kindOf(err))
	assert.EqualValues(t, 1, f.jobCount(t, job.ID))

	cl := "new letter"
	_, err = f.applications.UpdateByApplicant(as(f.seekerP), app.ID, domain.ApplicantUpdate{CoverLetter: &cl})
	assert.Equal(t, apperror.KindInvalidState, kindOf(err))
}

func TestUpdateByApplicant(t *testing.T) {
	f := newFixture(t)
	job := f.activeJob(t, "Backend Engineer")
	app, err := f.applications.Apply(as(f.seekerP), job.ID, "cv-1", "")
	require.NoError(t, err)

	resume := "cv-2"
	updated, err := f.applications.UpdateByApplicant(as(f.seekerP), app.ID, domain.ApplicantUpdate{Resume: &resume})
	require.NoError(t, err)
	assert.Equal(t, "cv-2", updated.Resume)

	_, err = f.applications.UpdateByApplicant(as(f.seeker2P), app.ID, domain.ApplicantUpdate{Resume: &resume})
	assert.Equal(t, apperror.KindNotFound, kindOf(err))
}

func TestUpdateStatusTransitions(t *testing.T) {
	f := newFixture(t)
	job := f.activeJob(t, "Backend Engineer")
	app, err := f.applications.Apply(as(f.seekerP), job.ID, "cv", "")
	require.NoError(t, err)
	employer := as(f.employerP)

	notes := "strong profile"
	got, err := f.applications.UpdateStatus(employer, app.ID, domain.ApplicationStatusUpdate{Status: domain.ApplicationStatusShortlisted, Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationStatusShortlisted, got.Status)
	assert.Equal(t, "strong profile", *got.Notes)
	assert.Equal(t, 1, f.notifier.sent(domain.TemplateApplicationStatus))

	// Same status again is a no-op without a second notification.
	_, err = f.applications.UpdateStatus(employer, app.ID, domain.ApplicationStatusUpdate{Status: domain.ApplicationStatusShortlisted})
	require.NoError(t, err)
	assert.Equal(t, 1, f.notifier.sent(domain.TemplateApplicationStatus))

	_, err = f.applications.UpdateStatus(employer, app.ID, domain.ApplicationStatusUpdate{Status: domain.ApplicationStatusPending})
	assert.Equal(t, apperror.KindInvalidState, kindOf(err))

	_, err = f.applications.UpdateStatus(employer, app.ID, domain.ApplicationStatusUpdate{Status: domain.ApplicationStatusAccepted})
	require.NoError(t, err)

	_, err = f.applications.UpdateStatus(employer, app.ID, domain.ApplicationStatusUpdate{Status: domain.ApplicationStatusRejected})
	assert.Equal(t, apperror.KindInvalidState, kindOf(err))

	_, err = f.applications.UpdateStatus(employer, app.ID, domain.ApplicationStatusUpdate{Status: "hired"})
	assert.Equal(t, apperror.KindValidation, kindOf(err))
}

func TestUpdateStatusAccess(t *testing.T) {
	f := newFixture(t)
	job := f.activeJob(t, "Backend Engineer")
	app, err := f.applications.Apply(as(f.seekerP), job.ID, "cv", "")
	require.NoError(t, err)
	upd := domain.ApplicationStatusUpdate{Status: domain.ApplicationStatusReviewing}

	_, err = f.applications.UpdateStatus(as(f.employer2P), app.ID, upd)
	assert.Equal(t, apperror.KindNotFound, kindOf(err))

	_, err = f.applications.UpdateStatus(as(f.seekerP), app.ID, upd)
	assert.Equal(t, apperror.KindForbidden, kindOf(err))

	_, err = f.applications.UpdateStatus(as(f.adminP), app.ID, upd)
	assert.Equal(t, apperror.KindForbidden, kindOf(err))
}

func TestGetMarksViewedAndHidesNotes(t *testing.T) {
	f := newFixture(t)
	job := f.activeJob(t, "Backend Engineer")
	app, err := f.applications.Apply(as(f.seekerP), job.ID, "cv", "")
	require.NoError(t, err)

	notes := "call back"
	_, err = f.applications.UpdateStatus(as(f.employerP), app.ID, domain.ApplicationStatusUpdate{Status: domain.ApplicationStatusReviewing, Notes: &notes})
	require.NoError(t, err)

	mine, err := f.applications.Get(as(f.seekerP), app.ID)
	require.NoError(t, err)
	assert.Nil(t, mine.Notes)
	assert.False(t, mine.Viewed)

	seen, err := f.applications.Get(as(f.employerP), app.ID)
	require.NoError(t, err)
	assert.True(t, seen.Viewed)
	require.NotNil(t, seen.Notes)

	_, err = f.applications.Get(as(f.seeker2P), app.ID)
	assert.Equal(t, apperror.KindNotFound, kindOf(err))
	_, err = f.applications.Get(as(f.employer2P), app.ID)
	assert.Equal(t, apperror.KindNotFound, kindOf(err))
}

func TestBulkUpdateStatus(t *testing.T) {
	f := newFixture(t)
	job := f.activeJob(t, "Backend Engineer")
	a1, err := f.applications.Apply(as(f.seekerP), job.ID, "cv", "")
	require.NoError(t, err)
	a2, err := f.applications.Apply(as(f.seeker2P), job.ID, "cv", "")
	require.NoError(t, err)
	employer := as(f.employerP)

	_, err = f.applications.UpdateStatus(employer, a2.ID, domain.ApplicationStatusUpdate{Status: domain.ApplicationStatusRejected})
	require.NoError(t, err)

	t.Run("all or nothing refuses the batch", func(t *testing.T) {
		_, err := f.applications.BulkUpdateStatus(employer, domain.BulkRequest{
			IDs: []int64{a1.ID, a2.ID}, Status: domain.ApplicationStatusShortlisted, AllOrNothing: true,
		})
		assert.Equal(t, apperror.KindInvalidState, kindOf(err))
		assert.Equal(t, "all_or_nothing", reasonOf(err))

		got, err := f.applications.Get(employer, a1.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ApplicationStatusPending, got.Status)
	})

	t.Run("best effort reports per item", func(t *testing.T) {
		res, err := f.applications.BulkUpdateStatus(employer, domain.BulkRequest{
			IDs: []int64{a1.ID, a2.ID, 424242, a1.ID}, Status: domain.ApplicationStatusShortlisted,
		})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Affected)
		assert.Equal(t, 2, res.Skipped)
		require.Len(t, res.Items, 3)
		assert.Equal(t, domain.BulkOutcomeAffected, res.Items[0].Outcome)
		assert.Equal(t, string(apperror.KindInvalidState), res.Items[1].Reason)
		assert.Equal(t, string(apperror.KindNotFound), res.Items[2].Reason)
	})

	t.Run("reapplying reports unchanged", func(t *testing.T) {
		res, err := f.applications.BulkUpdateStatus(employer, domain.BulkRequest{IDs: []int64{a1.ID}, Status: domain.ApplicationStatusShortlisted})
		require.NoError(t, err)
		assert.Equal(t, domain.BulkOutcomeUnchanged, res.Items[0].Outcome)
		assert.Zero(t, res.Affected)
	})

	_, err = f.applications.BulkUpdateStatus(employer, domain.BulkRequest{Status: domain.ApplicationStatusShortlisted})
	assert.Equal(t, apperror.KindValidation, kindOf(err))
}

func TestBulkWithdraw(t *testing.T) {
	f := newFixture(t)
	j1, j2 := f.activeJob(t, "One"), f.activeJob(t, "Two")
	a1, err := f.applications.Apply(as(f.seekerP), j1.ID, "cv", "")
	require.NoError(t, err)
	a2, err := f.applications.Apply(as(f.seekerP), j2.ID, "cv", "")
	require.NoError(t, err)
	other, err := f.applications.Apply(as(f.seeker2P), j1.ID, "cv", "")
	require.NoError(t, err)

	res, err := f.applications.BulkWithdraw(as(f.seekerP), domain.BulkRequest{IDs: []int64{a1.ID, a2.ID, other.ID}})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Affected)
	assert.Equal(t, 1, res.Skipped)
	assert.EqualValues(t, 1, f.jobCount(t, j1.ID))
	assert.EqualValues(t, 0, f.jobCount(t, j2.ID))
}

func TestListMineAndStats(t *testing.T) {
	f := newFixture(t)
	jobs := []*domain.Job{f.activeJob(t, "One"), f.activeJob(t, "Two"), f.activeJob(t, "Three")}
	var apps []*domain.Application
	for _, j := range jobs {
		a, err := f.applications.Apply(as(f.seekerP), j.ID, "cv", "")
		require.NoError(t, err)
		apps = append(apps, a)
	}
	_, err := f.applications.UpdateStatus(as(f.employerP), apps[0].ID, domain.ApplicationStatusUpdate{Status: domain.ApplicationStatusShortlisted})
	require.NoError(t, err)

	page, err := f.applications.ListMine(as(f.seekerP), domain.ApplicationFilter{Statuses: []domain.ApplicationStatus{domain.ApplicationStatusPending}})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.TotalCount)
	assert.Len(t, page.Items, 2)

	stats, err := f.applications.Stats(as(f.seekerP))
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.Total)
	assert.EqualValues(t, 1, stats.Shortlisted)
	assert.Equal(t, 33, stats.ResponseRate)
	assert.EqualValues(t, 3, stats.RecentApplications)

	check, err := f.applications.Check(as(f.seekerP), jobs[1].ID)
	require.NoError(t, err)
	assert.True(t, check.HasApplied)
	check, err = f.applications.Check(as(f.seeker2P), jobs[1].ID)
	require.NoError(t, err)
	assert.False(t, check.HasApplied)

	_, err = f.applications.ListMine(as(f.employerP), domain.ApplicationFilter{})
	assert.Equal(t, apperror.KindForbidden, kindOf(err))
}

func TestListForJobAndExport(t *testing.T) {
	f := newFixture(t)
	job := f.activeJob(t, "Backend Engineer")
	_, err := f.applications.Apply(as(f.seekerP), job.ID, "https://cv.example.com/s.pdf", "")
	require.NoError(t, err)

	page, err := f.applications.ListForJob(as(f.employerP), job.ID, domain.ApplicationFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.TotalCount)

	_, err = f.applications.ListForJob(as(f.employer2P), job.ID, domain.ApplicationFilter{})
	assert.Equal(t, apperror.KindNotFound, kindOf(err))

	csvFile, err := f.applications.ExportForJob(as(f.employerP), job.ID, "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", csvFile.ContentType)
	assert.True(t, strings.HasSuffix(csvFile.Filename, ".csv"))
	assert.Contains(t, string(csvFile.Data), "seeker@example.com")

	xlsx, err := f.applications.ExportForJob(as(f.employerP), job.ID, "")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(xlsx.Filename, ".xlsx"))
	assert.NotEmpty(t, xlsx.Data)

	_, err = f.applications.ExportForJob(as(f.employerP), job.ID, "pdf")
	assert.Equal(t, apperror.KindValidation, kindOf(err))

	_, err = f.applications.Apply(as(f.seeker2P), job.ID, "@SUM(1+1)", `=HYPERLINK("https://evil.example","cv")`)
	require.NoError(t, err)
	csvFile, err = f.applications.ExportForJob(as(f.employerP), job.ID, "csv")
	require.NoError(t, err)
	rows, err := csv.NewReader(bytes.NewReader(csvFile.Data)).ReadAll()
	require.NoError(t, err)
	var formulas int
	for _, row := range rows[1:] {
		if row[1] != "seeker2@example.com" {
			continue
		}
		assert.Equal(t, "'@SUM(1+1)", row[4])
		assert.Equal(t, `'=HYPERLINK("https://evil.example","cv")`, row[5])
		formulas++
	}
	assert.Equal(t, 1, formulas)

	all, err := f.applications.ListAll(as(f.adminP), domain.ApplicationFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, all.TotalCount)
	_, err = f.applications.ListAll(as(f.employerP), domain.ApplicationFilter{})
	assert.Equal(t, apperror.KindForbidden, kindOf(err))
}
