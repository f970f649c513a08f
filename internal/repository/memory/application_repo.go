package memory

import (
	"context"
	"slices"
	"time"

	"go-jobboard-backend/internal/domain"
)

type applicationRepo struct{ s *Store }

func (r *applicationRepo) Create(ctx context.Context, app *domain.Application) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.jobs[app.JobID]; !ok {
		return domain.ErrNotFound
	}
	for _, existing := range r.s.applications {
		if existing.JobID == app.JobID && existing.ApplicantID == app.ApplicantID {
			return domain.ErrAlreadyExists
		}
	}
	now := r.s.now()
	app.ID = r.s.nextID()
	app.CreatedAt, app.UpdatedAt = now, now
	cp := *app
	r.s.applications[app.ID] = &cp
	return nil
}

// joined must be called with mu held.
func (r *applicationRepo) joined(a *domain.Application) domain.Application {
	cp := *a
	if j, ok := r.s.jobs[a.JobID]; ok {
		title, companyID := j.Title, j.CompanyID
		cp.JobTitle = &title
		cp.CompanyID = &companyID
	}
	if u, ok := r.s.users[a.ApplicantID]; ok {
		email := u.Email
		cp.ApplicantEmail = &email
	}
	return cp
}

func (r *applicationRepo) GetByID(ctx context.Context, id int64) (*domain.Application, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.applications[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := r.joined(a)
	return &cp, nil
}

func (r *applicationRepo) GetByJobAndApplicant(ctx context.Context, jobID int64, applicantID string) (*domain.Application, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.applications {
		if a.JobID == jobID && a.ApplicantID == applicantID {
			cp := r.joined(a)
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *applicationRepo) List(ctx context.Context, f domain.ApplicationFilter) ([]domain.Application, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var matched []domain.Application
	for _, a := range r.s.applications {
		if r.match(a, f) {
			matched = append(matched, r.joined(a))
		}
	}
	newestFirst(matched, func(a domain.Application) time.Time { return a.CreatedAt }, func(a domain.Application) int64 { return a.ID })
	return paginate(matched, f.PageRequest), int64(len(matched)), nil
}

func (r *applicationRepo) match(a *domain.Application, f domain.ApplicationFilter) bool {
	if f.JobID != nil && a.JobID != *f.JobID {
		return false
	}
	if f.ApplicantID != "" && a.ApplicantID != f.ApplicantID {
		return false
	}
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, a.Status) {
		return false
	}
	if f.CompanyID != nil {
		j, ok := r.s.jobs[a.JobID]
		if !ok || j.CompanyID != *f.CompanyID {
			return false
		}
	}
	return true
}

func (r *applicationRepo) UpdateStatusIf(ctx context.Context, id int64, from domain.ApplicationStatus, upd domain.ApplicationStatusUpdate) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.applications[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	if a.Status != from {
		return false, nil
	}
	a.Status = upd.Status
	if upd.Notes != nil {
		v := *upd.Notes
		a.Notes = &v
	}
	a.UpdatedAt = r.s.now()
	return true, nil
}

func (r *applicationRepo) UpdateNotes(ctx context.Context, id int64, notes *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.applications[id]
	if !ok {
		return domain.ErrNotFound
	}
	if notes != nil {
		v := *notes
		a.Notes = &v
	}
	a.UpdatedAt = r.s.now()
	return nil
}

func (r *applicationRepo) UpdateByApplicantIf(ctx context.Context, id int64, applicantID string, statuses []domain.ApplicationStatus, upd domain.ApplicantUpdate) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.applications[id]
	if !ok || a.ApplicantID != applicantID {
		return false, domain.ErrNotFound
	}
	if !slices.Contains(statuses, a.Status) {
		return false, nil
	}
	setIf(&a.Resume, upd.Resume)
	if upd.CoverLetter != nil {
		v := *upd.CoverLetter
		a.CoverLetter = &v
	}
	a.UpdatedAt = r.s.now()
	return true, nil
}

func (r *applicationRepo) MarkViewed(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.applications[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.Viewed = true
	return nil
}

func (r *applicationRepo) DeleteIf(ctx context.Context, id int64, applicantID string, statuses []domain.ApplicationStatus) (*domain.Application, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.applications[id]
	if !ok || a.ApplicantID != applicantID || !slices.Contains(statuses, a.Status) {
		return nil, nil
	}
	deleted := r.joined(a)
	delete(r.s.applications, id)
	return &deleted, nil
}

func (r *applicationRepo) CountByStatus(ctx context.Context, applicantID string, since time.Time) (map[domain.ApplicationStatus]int64, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := make(map[domain.ApplicationStatus]int64)
	var recent int64
	for _, a := range r.s.applications {
		if a.ApplicantID != applicantID {
			continue
		}
		counts[a.Status]++
		if !a.CreatedAt.Before(since) {
			recent++
		}
	}
	return counts, recent, nil
}
