package domain

import "context"

// Notification template ids.
const (
	TemplateApplicationReceived = "application_received"
	TemplateNewApplication      = "new_application"
	TemplateApplicationStatus   = "application_status"
	TemplateJobApproved         = "job_approved"
	TemplateJobRejected         = "job_rejected"
)

// Notifier is the best-effort notification sink. Notify must not block on
// delivery and its failures never affect the caller's outcome.
type Notifier interface {
	Notify(ctx context.Context, templateID, recipient string, data map[string]any)
}
