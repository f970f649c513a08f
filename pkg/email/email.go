package email

import (
	"context"

	"go-jobboard-backend/config"
	"go-jobboard-backend/pkg/logger"

	"gopkg.in/gomail.v2"
)

// Sender delivers a rendered HTML message.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// SMTPSender sends mail through the configured SMTP relay.
type SMTPSender struct {
	from   string
	dialer *gomail.Dialer
}

func NewSMTPSender(cfg *config.Config) *SMTPSender {
	return &SMTPSender{
		from:   cfg.SMTPFromEmail,
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
	}
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)
	return s.dialer.DialAndSend(m)
}

// LogSender is used when SMTP is not configured; it only records the message.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	logger.Log.Info("email not sent, SMTP not configured", "to", to, "subject", subject)
	return nil
}

// NewSender picks the SMTP sender when credentials are present.
func NewSender(cfg *config.Config) Sender {
	if cfg.SMTPConfigured() {
		return NewSMTPSender(cfg)
	}
	logger.Log.Warn("SMTP not configured, notifications will only be logged")
	return LogSender{}
}
