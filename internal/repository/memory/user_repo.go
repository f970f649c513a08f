package memory

import (
	"context"

	"go-jobboard-backend/internal/domain"
)

type userRepo struct{ s *Store }

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.users[user.ID]; exists {
		return domain.ErrAlreadyExists
	}
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return domain.ErrAlreadyExists
		}
	}
	now := r.s.now()
	user.CreatedAt, user.UpdatedAt = now, now
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *userRepo) GetByIDs(ctx context.Context, ids []string) ([]domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	users := make([]domain.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			users = append(users, *u)
		}
	}
	return users, nil
}

func (r *userRepo) UpdateProfile(ctx context.Context, id, name string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.Name = name
	u.UpdatedAt = r.s.now()
	return nil
}

func (r *userRepo) SetCompany(ctx context.Context, id string, companyID *int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.CompanyID = nil
	if companyID != nil {
		v := *companyID
		u.CompanyID = &v
	}
	u.UpdatedAt = r.s.now()
	return nil
}
