package domain

import (
	"context"
	"time"
)

type User struct {
	ID        string    `json:"id"` // identity provider subject
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	CompanyID *int64    `json:"company_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Principal derives the request identity for the user.
func (u *User) Principal() *Principal {
	return &Principal{
		UserID:    u.ID,
		Email:     u.Email,
		Role:      u.Role,
		CompanyID: u.CompanyID,
	}
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByIDs(ctx context.Context, ids []string) ([]User, error)
	UpdateProfile(ctx context.Context, id, name string) error
	SetCompany(ctx context.Context, id string, companyID *int64) error
}

type UserUsecase interface {
	// Register creates the local user for an authenticated identity. The role
	// chosen here cannot be changed afterwards.
	Register(ctx context.Context, userID, email, name string, role Role) (*User, error)
	GetCurrentUser(ctx context.Context, id string) (*User, error)
	UpdateProfile(ctx context.Context, name string) (*User, error)
}
