// Package email provides the outbound email collaborator.
// Delivery failures are reported to callers but, by policy, never roll back
// an already-committed resource creation.
package email

import (
	"context"

	"courseportal_backend/platform/config"
)

// Sender delivers transactional emails for the course platform.
type Sender interface {
	SendWelcomeEmail(ctx context.Context, toEmail, username string) error
	SendVerificationCodeEmail(ctx context.Context, toEmail, username, verifyURL string) error
	SendEnrollmentConfirmationEmail(ctx context.Context, toEmail, username, courseTitle string) error
}

// NoopSender is used when email delivery is disabled.
type NoopSender struct{}

func (NoopSender) SendWelcomeEmail(ctx context.Context, toEmail, username string) error {
	return nil
}

func (NoopSender) SendVerificationCodeEmail(ctx context.Context, toEmail, username, verifyURL string) error {
	return nil
}

func (NoopSender) SendEnrollmentConfirmationEmail(ctx context.Context, toEmail, username, courseTitle string) error {
	return nil
}

// NewSender returns the configured Sender implementation.
func NewSender(cfg config.EmailConfig) Sender {
	if !cfg.GetEmailEnabled() {
		return NoopSender{}
	}
	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	)
}
