package email

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	texttemplate "text/template"
)

type messageTemplate struct {
	subject *texttemplate.Template
	body    *template.Template
}

const layout = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #0066cc; color: white; padding: 16px; text-align: center; }
        .content { padding: 20px; background: #f9f9f9; }
        .footer { text-align: center; padding: 16px; color: #888; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header"><h2>{{template "title" .}}</h2></div>
        <div class="content">{{template "content" .}}</div>
        <div class="footer"><p>You are receiving this email because of activity on your JobPortal account.</p></div>
    </div>
</body>
</html>`

var sources = map[string]struct{ subject, title, content string }{
	"application_received": {
		subject: "Application Received - {{.JobTitle}}",
		title:   "Application Confirmation",
		content: `<p>Your application for <strong>{{.JobTitle}}</strong> at <strong>{{.CompanyName}}</strong> has been received.</p>
<p>You will be notified when the employer reviews your application.</p>`,
	},
	"new_application": {
		subject: "New Application - {{.JobTitle}}",
		title:   "New Application Received",
		content: `<p><strong>{{.ApplicantName}}</strong> has applied for <strong>{{.JobTitle}}</strong>.</p>
<p><a href="{{.FrontendURL}}/employer/jobs/{{.JobID}}/applications">Review Application</a></p>`,
	},
	"application_status": {
		subject: "Application Update - {{.JobTitle}}",
		title:   "Application Status Update",
		content: `<p>Your application for <strong>{{.JobTitle}}</strong> has been updated to: <strong>{{.Status}}</strong></p>
<p><a href="{{.FrontendURL}}/dashboard">View Details</a></p>`,
	},
	"job_approved": {
		subject: "Job Approved - {{.JobTitle}}",
		title:   "Your job is live",
		content: `<p><strong>{{.JobTitle}}</strong> has been approved and is now visible to job seekers.</p>
<p><a href="{{.FrontendURL}}/jobs/{{.JobID}}">View Job</a></p>`,
	},
	"job_rejected": {
		subject: "Job Not Approved - {{.JobTitle}}",
		title:   "Job posting not approved",
		content: `<p><strong>{{.JobTitle}}</strong> was not approved by our moderators and has been closed.</p>`,
	},
}

// Templates renders notification emails by template id.
type Templates struct {
	byID map[string]messageTemplate
}

func NewTemplates() (*Templates, error) {
	t := &Templates{byID: make(map[string]messageTemplate, len(sources))}
	for id, src := range sources {
		subject, err := texttemplate.New(id + ".subject").Parse(src.subject)
		if err != nil {
			return nil, fmt.Errorf("parse %s subject: %w", id, err)
		}
		body, err := template.New(id).Parse(layout)
		if err == nil {
			_, err = body.New("title").Parse(src.title)
		}
		if err == nil {
			_, err = body.New("content").Parse(src.content)
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s body: %w", id, err)
		}
		t.byID[id] = messageTemplate{subject: subject, body: body}
	}
	return t, nil
}

// Render returns the subject and HTML body for templateID.
func (t *Templates) Render(templateID string, data map[string]any) (string, string, error) {
	tmpl, ok := t.byID[templateID]
	if !ok {
		return "", "", fmt.Errorf("unknown email template %q", templateID)
	}
	var subject, body bytes.Buffer
	if err := tmpl.subject.Execute(&subject, data); err != nil {
		return "", "", fmt.Errorf("failed to execute subject template: %w", err)
	}
	if err := tmpl.body.Execute(&body, data); err != nil {
		return "", "", fmt.Errorf("failed to execute email template: %w", err)
	}
	return strings.TrimSpace(subject.String()), body.String(), nil
}
