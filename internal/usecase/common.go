package usecase

import (
	"context"
	"errors"
	"maps"
	"strconv"

	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/apperror"
	"go-jobboard-backend/pkg/logger"
)

// storeErr maps gateway sentinels onto client-facing error kinds.
func storeErr(err error, notFoundMsg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrNotFound):
		return apperror.NotFound(notFoundMsg)
	case errors.Is(err, domain.ErrAlreadyExists):
		return apperror.AlreadyExists("Resource already exists")
	default:
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return apperror.Internal(err)
	}
}

// principal returns the caller or Unauthenticated.
func principal(ctx context.Context) (*domain.Principal, error) {
	p := domain.PrincipalFrom(ctx)
	if p == nil || p.UserID == "" {
		return nil, apperror.Unauthenticated("Authentication required")
	}
	return p, nil
}

// notices resolves recipients and hands notifications to the sink. Every
// failure here is logged and swallowed.
type notices struct {
	notifier    domain.Notifier
	users       domain.UserRepository
	companies   domain.CompanyRepository
	frontendURL string
}

func (n *notices) send(ctx context.Context, templateID, recipient string, data map[string]any) {
	if n == nil || n.notifier == nil || recipient == "" {
		return
	}
	if data == nil {
		data = map[string]any{}
	}
	data["FrontendURL"] = n.frontendURL
	n.notifier.Notify(ctx, templateID, recipient, data)
}

func (n *notices) toUser(ctx context.Context, templateID, userID string, data map[string]any) {
	if n == nil || n.notifier == nil {
		return
	}
	u, err := n.users.GetByID(ctx, userID)
	if err != nil {
		logger.Log.Warn("notification recipient lookup failed", "template", templateID, "user_id", userID, "error", err)
		return
	}
	n.send(ctx, templateID, u.Email, data)
}

func (n *notices) toCompanyOwners(ctx context.Context, templateID string, companyID int64, data map[string]any) {
	if n == nil || n.notifier == nil {
		return
	}
	company, err := n.companies.GetByID(ctx, companyID)
	if err != nil {
		logger.Log.Warn("notification company lookup failed", "template", templateID, "company_id", companyID, "error", err)
		return
	}
	owners, err := n.users.GetByIDs(ctx, company.Owners)
	if err != nil {
		logger.Log.Warn("notification owner lookup failed", "template", templateID, "company_id", companyID, "error", err)
		return
	}
	data["CompanyName"] = company.Name
	for _, owner := range owners {
		n.send(ctx, templateID, owner.Email, maps.Clone(data))
	}
}

func jobData(job *domain.Job) map[string]any {
	return map[string]any{
		"JobID":    strconv.FormatInt(job.ID, 10),
		"JobTitle": job.Title,
	}
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
