package usecase

import (
	"context"
	"errors"

	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/apperror"
	"go-jobboard-backend/pkg/logger"
)

type paymentUsecase struct {
	jobEngine
	events domain.PaymentEventRepository
}

func NewPaymentUsecase(events domain.PaymentEventRepository, jobs domain.JobRepository, users domain.UserRepository, companies domain.CompanyRepository, notifier domain.Notifier, frontendURL string) domain.PaymentUsecase {
	return &paymentUsecase{
		jobEngine: jobEngine{
			jobs:    jobs,
			notices: &notices{notifier: notifier, users: users, companies: companies, frontendURL: frontendURL},
		},
		events: events,
	}
}

// HandleEvent applies an authenticated payment event. Each event id is
// processed once: the id is recorded first and a redelivery is acknowledged
// without side effects. If processing fails on an internal error the record
// is dropped so the provider's retry can succeed; rejected events stay
// recorded.
func (u *paymentUsecase) HandleEvent(ctx context.Context, e *domain.PaymentEvent) error {
	if e.ID == "" || e.JobID <= 0 {
		return apperror.Validation("Payment event must carry an id and a job id")
	}
	if e.Plan == "" {
		e.Plan = domain.PaymentPlanBasic
	}
	if e.Plan != domain.PaymentPlanBasic && e.Plan != domain.PaymentPlanFeatured {
		return apperror.Validation("Unknown payment plan " + e.Plan)
	}

	if err := u.events.Record(ctx, e); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			logger.Log.Info("duplicate payment event ignored", "event_id", e.ID, "job_id", e.JobID)
			return nil
		}
		return apperror.Internal(err)
	}

	if err := u.process(ctx, e); err != nil {
		if apperror.KindOf(err) != apperror.KindInternal {
			return err
		}
		if ferr := u.events.Forget(ctx, e.ID); ferr != nil {
			logger.Log.Error("failed to release payment event", "event_id", e.ID, "error", ferr)
		}
		return err
	}
	return nil
}

func (u *paymentUsecase) process(ctx context.Context, e *domain.PaymentEvent) error {
	if e.Outcome != domain.PaymentOutcomeSucceeded {
		logger.Log.Info("payment not successful, job unchanged", "event_id", e.ID, "job_id", e.JobID, "outcome", e.Outcome)
		return nil
	}
	job, err := u.load(ctx, e.JobID)
	if err != nil {
		return err
	}
	t := domain.JobPaymentConfirmed{Featured: e.Plan == domain.PaymentPlanFeatured}
	if _, err := u.apply(ctx, job, t); err != nil {
		logger.Log.Warn("payment confirmation rejected", "event_id", e.ID, "job_id", e.JobID, "status", job.Status, "error", err)
		return err
	}
	logger.Log.Info("payment confirmed", "event_id", e.ID, "job_id", e.JobID, "plan", e.Plan)
	return nil
}
