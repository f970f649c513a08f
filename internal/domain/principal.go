package domain

import "context"

type Role string

const (
	RoleSeeker   Role = "seeker"
	RoleEmployer Role = "employer"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSeeker, RoleEmployer, RoleAdmin:
		return true
	}
	return false
}

// Principal is the authenticated identity making a request. Role is empty for
// a verified token whose user has not been registered locally yet.
type Principal struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	CompanyID *int64 `json:"company_id,omitempty"`
}

func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// BelongsTo reports whether the principal is an employer of companyID.
func (p *Principal) BelongsTo(companyID int64) bool {
	return p != nil && p.Role == RoleEmployer && p.CompanyID != nil && *p.CompanyID == companyID
}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, KeyPrincipal, p)
}

// PrincipalFrom returns the principal stored in ctx, or nil for anonymous callers.
func PrincipalFrom(ctx context.Context) *Principal {
	p, _ := ctx.Value(KeyPrincipal).(*Principal)
	return p
}
