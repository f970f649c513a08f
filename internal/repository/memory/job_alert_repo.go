package memory

import (
	"context"
	"time"

	"go-jobboard-backend/internal/domain"
)

type jobAlertRepo struct{ s *Store }

func (r *jobAlertRepo) Create(ctx context.Context, a *domain.JobAlert) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	a.ID = r.s.nextID()
	a.CreatedAt, a.UpdatedAt = now, now
	cp := *a
	r.s.alerts[a.ID] = &cp
	return nil
}

func (r *jobAlertRepo) GetByID(ctx context.Context, id int64) (*domain.JobAlert, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.alerts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *jobAlertRepo) Update(ctx context.Context, id int64, upd domain.JobAlertUpdate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.alerts[id]
	if !ok {
		return domain.ErrNotFound
	}
	setIf(&a.Keywords, upd.Keywords)
	setIf(&a.Location, upd.Location)
	setIf(&a.Type, upd.Type)
	setIf(&a.MinSalary, upd.MinSalary)
	setIf(&a.Frequency, upd.Frequency)
	setIf(&a.Active, upd.Active)
	a.UpdatedAt = r.s.now()
	return nil
}

func (r *jobAlertRepo) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.alerts[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.alerts, id)
	return nil
}

func (r *jobAlertRepo) ListByUser(ctx context.Context, userID string) ([]domain.JobAlert, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	alerts := []domain.JobAlert{}
	for _, a := range r.s.alerts {
		if a.UserID == userID {
			alerts = append(alerts, *a)
		}
	}
	newestFirst(alerts, func(a domain.JobAlert) time.Time { return a.CreatedAt }, func(a domain.JobAlert) int64 { return a.ID })
	return alerts, nil
}
