package domain

import (
	"context"
	"time"
)

const (
	PaymentPlanBasic    = "basic"
	PaymentPlanFeatured = "featured"

	PaymentOutcomeSucceeded = "succeeded"
	PaymentOutcomeFailed    = "failed"
)

// PaymentEvent is a verified webhook delivery from the payment provider.
type PaymentEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	JobID      int64     `json:"job_id"`
	Plan       string    `json:"plan"`
	Outcome    string    `json:"outcome"`
	ReceivedAt time.Time `json:"received_at"`
}

type PaymentEventRepository interface {
	// Record stores the event id; ErrAlreadyExists on redelivery.
	Record(ctx context.Context, e *PaymentEvent) error
	// Forget removes a recorded event so a failed delivery can be retried.
	Forget(ctx context.Context, id string) error
}

type PaymentUsecase interface {
	HandleEvent(ctx context.Context, e *PaymentEvent) error
}
