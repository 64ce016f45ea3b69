package email

import (
	"bytes"
	"html/template"
)

const (
	subjectWelcome      = "Welcome to our courses platform"
	subjectVerification = "Email Verification"
	subjectEnrollment   = "Enrollment Confirmation"
)

type welcomeEmailData struct {
	Heading  string
	Body     string
	CTALabel string
	CTAURL   string
}

var emailTemplate = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1f2933; margin: 0; padding: 24px;">
  <div style="max-width: 560px; margin: 0 auto; border: 1px solid #e4e7eb; border-radius: 8px; padding: 32px;">
    <h1 style="font-size: 20px; margin-top: 0;">{{.Heading}}</h1>
    <p style="font-size: 14px; line-height: 1.6;">{{.Body}}</p>
    {{if .CTAURL}}
    <p style="margin-top: 24px;">
      <a href="{{.CTAURL}}" style="background: #2563eb; color: #ffffff; padding: 10px 18px; border-radius: 6px; text-decoration: none;">{{.CTALabel}}</a>
    </p>
    {{end}}
  </div>
</body>
</html>`))

func renderEmailTemplate(data welcomeEmailData) (string, error) {
	var buf bytes.Buffer
	if err := emailTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
