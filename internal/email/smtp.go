package email

import (
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender implements the Sender interface using a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates a new SMTPSender with the given SMTP credentials.
func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

func (s *SMTPSender) SendWelcomeEmail(ctx context.Context, toEmail, username string) error {
	content, err := renderEmailTemplate(welcomeEmailData{
		Heading: "Welcome " + username + "!",
		Body:    "We're excited to have you join our learning platform.",
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectWelcome, content)
}

func (s *SMTPSender) SendVerificationCodeEmail(ctx context.Context, toEmail, username, verifyURL string) error {
	content, err := renderEmailTemplate(welcomeEmailData{
		Heading:  "Email Verification",
		Body:     "Hello " + username + ", please verify your email by clicking the link below.",
		CTALabel: "Verify Email",
		CTAURL:   verifyURL,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectVerification, content)
}

func (s *SMTPSender) SendEnrollmentConfirmationEmail(ctx context.Context, toEmail, username, courseTitle string) error {
	content, err := renderEmailTemplate(welcomeEmailData{
		Heading: "Enrollment confirmed",
		Body:    "Hello " + username + ", you are now enrolled in " + courseTitle + ". Happy learning!",
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectEnrollment, content)
}
