package usecase_test

import (
	"testing"

	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentConfirmsFeaturedJob(t *testing.T) {
	f := newFixture(t)
	job := f.pendingJob(t, "Backend Engineer")
	evt := &domain.PaymentEvent{ID: "evt_1", JobID: job.ID, Plan: domain.PaymentPlanFeatured, Outcome: domain.PaymentOutcomeSucceeded}

	require.NoError(t, f.payments.HandleEvent(as(nil), evt))
	got, err := f.store.Jobs().GetByID(as(nil), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusActive, got.Status)
	assert.True(t, got.Featured)

	// Redelivery is acknowledged without another transition.
	require.NoError(t, f.payments.HandleEvent(as(nil), evt))
}

func TestPaymentBasicPlanOnActiveJob(t *testing.T) {
	f := newFixture(t)
	job := f.activeJob(t, "Backend Engineer")

	require.NoError(t, f.payments.HandleEvent(as(nil), &domain.PaymentEvent{ID: "evt_2", JobID: job.ID, Outcome: domain.PaymentOutcomeSucceeded}))
	got, err := f.store.Jobs().GetByID(as(nil), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusActive, got.Status)
	assert.False(t, got.Featured)
}

func TestPaymentNeverReopensClosedJob(t *testing.T) {
	f := newFixture(t)
	job := f.pendingJob(t, "Backend Engineer")
	_, err := f.jobs.Transition(as(f.employerP), job.ID, domain.JobClose{})
	require.NoError(t, err)

	err = f.payments.HandleEvent(as(nil), &domain.PaymentEvent{ID: "evt_3", JobID: job.ID, Plan: domain.PaymentPlanFeatured, Outcome: domain.PaymentOutcomeSucceeded})
	assert.Equal(t, apperror.KindInvalidState, kindOf(err))

	got, err := f.store.Jobs().GetByID(as(nil), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusClosed, got.Status)
	assert.False(t, got.Featured)
}

func TestPaymentFailedOutcomeLeavesJob(t *testing.T) {
	f := newFixture(t)
	job := f.pendingJob(t, "Backend Engineer")

	require.NoError(t, f.payments.HandleEvent(as(nil), &domain.PaymentEvent{ID: "evt_4", JobID: job.ID, Outcome: domain.PaymentOutcomeFailed}))
	got, err := f.store.Jobs().GetByID(as(nil), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusPending, got.Status)
}

func TestPaymentRetryAfterInternalFailure(t *testing.T) {
	f := newFixture(t)
	job := f.pendingJob(t, "Backend Engineer")
	evt := &domain.PaymentEvent{ID: "evt_5", JobID: job.ID, Plan: domain.PaymentPlanBasic, Outcome: domain.PaymentOutcomeSucceeded}

	f.jobsRepo.failStatus = true
	err := f.payments.HandleEvent(as(nil), evt)
	assert.Equal(t, apperror.KindInternal, kindOf(err))

	f.jobsRepo.failStatus = false
	require.NoError(t, f.payments.HandleEvent(as(nil), evt))
	got, err := f.store.Jobs().GetByID(as(nil), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusActive, got.Status)
}

func TestPaymentValidation(t *testing.T) {
	f := newFixture(t)
	err := f.payments.HandleEvent(as(nil), &domain.PaymentEvent{JobID: 1})
	assert.Equal(t, apperror.KindValidation, kindOf(err))
	err = f.payments.HandleEvent(as(nil), &domain.PaymentEvent{ID: "evt_6", JobID: 1, Plan: "platinum"})
	assert.Equal(t, apperror.KindValidation, kindOf(err))
}
