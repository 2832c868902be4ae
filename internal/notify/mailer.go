// Package notify sends the post-run email reports: one listing the errors
// collected during an import run, one listing attributes that were missing
// from the catalog.
package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"text/template"

	"github.com/shopfabrik/catalog-import/config"
)

const errorReportTemplate = `The catalog import finished with errors.

{{range .Errors}}{{.}}
{{end}}`

const missingAttributesTemplate = `The following attributes were referenced by import files but do not exist in the catalog:

{{range .Attributes}}  - {{.}}
{{end}}
They were skipped. Create them or enable attribute auto-creation.`

var (
	errorTmpl   = template.Must(template.New("errors").Parse(errorReportTemplate))
	missingTmpl = template.Must(template.New("missing").Parse(missingAttributesTemplate))
)

// Mailer delivers import reports over SMTP.
type Mailer struct {
	cfg config.NotificationsConfig
}

// NewMailer validates the notification settings and builds a Mailer.
// A disabled configuration yields a Mailer whose sends are no-ops.
func NewMailer(cfg config.NotificationsConfig) (*Mailer, error) {
	if cfg.Enabled {
		if cfg.SMTPHost == "" {
			return nil, fmt.Errorf("notifications enabled but smtp_host not set")
		}
		if len(cfg.Recipients) == 0 {
			return nil, fmt.Errorf("notifications enabled but no recipients configured")
		}
	}
	return &Mailer{cfg: cfg}, nil
}

// SendErrorReport mails the collected run errors. Nothing is sent when the
// error list is empty or notifications are disabled.
func (m *Mailer) SendErrorReport(ctx context.Context, errors []string) error {
	if !m.cfg.Enabled || len(errors) == 0 {
		return nil
	}
	var body strings.Builder
	if err := errorTmpl.Execute(&body, struct{ Errors []string }{errors}); err != nil {
		return fmt.Errorf("failed to render error report: %w", err)
	}
	return m.send(ctx, "Catalog import: errors", body.String())
}

// SendMissingAttributesReport mails the attributes that were skipped
// because they do not exist in the catalog.
func (m *Mailer) SendMissingAttributesReport(ctx context.Context, attributes []string) error {
	if !m.cfg.Enabled || len(attributes) == 0 {
		return nil
	}
	var body strings.Builder
	if err := missingTmpl.Execute(&body, struct{ Attributes []string }{attributes}); err != nil {
		return fmt.Errorf("failed to render missing attributes report: %w", err)
	}
	return m.send(ctx, "Catalog import: missing attributes", body.String())
}

func (m *Mailer) send(ctx context.Context, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPHost, m.cfg.SMTPPort)

	var auth smtp.Auth
	if m.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", m.cfg.SMTPUser, m.cfg.SMTPPass, m.cfg.SMTPHost)
	}

	from := m.cfg.From
	if from == "" {
		from = m.cfg.SMTPUser
	}

	msg := []byte(
		"From: " + from + "\r\n" +
			"To: " + strings.Join(m.cfg.Recipients, ", ") + "\r\n" +
			"Subject: " + subject + "\r\n" +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/plain; charset=UTF-8\r\n" +
			"\r\n" +
			body,
	)

	if err := smtp.SendMail(addr, auth, from, m.cfg.Recipients, msg); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}
	return nil
}
