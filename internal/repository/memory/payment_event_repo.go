package memory

import (
	"context"

	"go-jobboard-backend/internal/domain"
)

type paymentEventRepo struct{ s *Store }

func (r *paymentEventRepo) Record(ctx context.Context, e *domain.PaymentEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, seen := r.s.payments[e.ID]; seen {
		return domain.ErrAlreadyExists
	}
	e.ReceivedAt = r.s.now()
	cp := *e
	r.s.payments[e.ID] = &cp
	return nil
}

func (r *paymentEventRepo) Forget(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.payments, id)
	return nil
}
