package memory

import (
	"context"
	"errors"
	"slices"
	"time"

	"go-jobboard-backend/internal/domain"
)

type companyRepo struct{ s *Store }

func (r *companyRepo) Create(ctx context.Context, c *domain.Company) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if len(c.Owners) == 0 {
		return errors.New("insert company: no owner")
	}
	owner, err := r.s.linkable(c.Owners[0], 0)
	if err != nil {
		return err
	}
	now := r.s.now()
	c.ID = r.s.nextID()
	c.CreatedAt, c.UpdatedAt = now, now
	cp := copyCompany(c)
	r.s.companies[c.ID] = &cp
	companyID := c.ID
	owner.CompanyID, owner.UpdatedAt = &companyID, now
	return nil
}

func (r *companyRepo) GetByID(ctx context.Context, id int64) (*domain.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.companies[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := copyCompany(c)
	return &cp, nil
}

func (r *companyRepo) Update(ctx context.Context, id int64, upd domain.CompanyUpdate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.companies[id]
	if !ok {
		return domain.ErrNotFound
	}
	setIf(&c.Name, upd.Name)
	setIf(&c.Description, upd.Description)
	setIf(&c.Location, upd.Location)
	setIf(&c.Size, upd.Size)
	setIf(&c.Industry, upd.Industry)
	if upd.Logo != nil {
		v := *upd.Logo
		c.Logo = &v
	}
	if upd.Website != nil {
		v := *upd.Website
		c.Website = &v
	}
	c.UpdatedAt = r.s.now()
	return nil
}

func (r *companyRepo) AddOwner(ctx context.Context, id int64, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.companies[id]
	if !ok {
		return domain.ErrNotFound
	}
	u, err := r.s.linkable(userID, id)
	if err != nil {
		return err
	}
	now := r.s.now()
	if !slices.Contains(c.Owners, userID) {
		c.Owners = append(c.Owners, userID)
		c.UpdatedAt = now
	}
	companyID := id
	u.CompanyID, u.UpdatedAt = &companyID, now
	return nil
}

func (r *companyRepo) RemoveOwner(ctx context.Context, id int64, userID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.companies[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	idx := slices.Index(c.Owners, userID)
	if idx < 0 || len(c.Owners) == 1 {
		return false, nil
	}
	c.Owners = slices.Delete(c.Owners, idx, idx+1)
	c.UpdatedAt = r.s.now()
	return true, nil
}

func (r *companyRepo) VerifyIfUnverified(ctx context.Context, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.companies[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	if c.IsVerified {
		return false, nil
	}
	c.IsVerified = true
	c.UpdatedAt = r.s.now()
	return true, nil
}

func (r *companyRepo) List(ctx context.Context, f domain.CompanyFilter) ([]domain.Company, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var matched []domain.Company
	for _, c := range r.s.companies {
		if matchCompany(c, f) {
			matched = append(matched, copyCompany(c))
		}
	}
	newestFirst(matched, func(c domain.Company) time.Time { return c.CreatedAt }, func(c domain.Company) int64 { return c.ID })
	return paginate(matched, f.PageRequest), int64(len(matched)), nil
}

func matchCompany(c *domain.Company, f domain.CompanyFilter) bool {
	if f.Verified != nil && c.IsVerified != *f.Verified {
		return false
	}
	if f.Search != "" && !containsFold(c.Name, f.Search) && !containsFold(c.Industry, f.Search) {
		return false
	}
	return true
}

func (r *companyRepo) CountActiveJobs(ctx context.Context, companyIDs []int64) (map[int64]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := make(map[int64]int64, len(companyIDs))
	for _, id := range companyIDs {
		counts[id] = 0
	}
	for _, j := range r.s.jobs {
		if _, wanted := counts[j.CompanyID]; wanted && j.Status == domain.JobStatusActive {
			counts[j.CompanyID]++
		}
	}
	return counts, nil
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
