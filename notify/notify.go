// Package notify sends transactional mail to platform users.
package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"educa/config"
	"educa/logger"
)

// Enrollment is the data of one enrollment confirmation.
type Enrollment struct {
	Email       string
	Username    string
	CourseTitle string
	CourseSlug  string
}

type Notifier interface {
	Enrolled(ctx context.Context, e Enrollment) error
}

// New returns a SendGrid notifier when an API key is configured, otherwise
// a notifier that only logs.
func New(cfg *config.Config, log *logger.Logger) Notifier {
	if log == nil {
		log = logger.Nop()
	}
	if strings.TrimSpace(cfg.SendGridAPIKey) == "" {
		return Log{log: log.With("service", "Notifier")}
	}
	return &SendGrid{
		client: sendgrid.NewSendClient(cfg.SendGridAPIKey),
		from:   mail.NewEmail(cfg.SendGridFromName, cfg.SendGridFromEmail),
		log:    log.With("service", "SendGridNotifier"),
	}
}

type SendGrid struct {
	client *sendgrid.Client
	from   *mail.Email
	log    *logger.Logger
}

func (s *SendGrid) Enrolled(ctx context.Context, e Enrollment) error {
	if strings.TrimSpace(e.Email) == "" {
		return nil
	}
	subject, text, body := enrollmentMail(e)
	msg := mail.NewSingleEmail(s.from, subject, mail.NewEmail(e.Username, e.Email), text, body)

	resp, err := s.client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid http %d: %s", resp.StatusCode, strings.TrimSpace(resp.Body))
	}
	s.log.Info("enrollment mail sent", "email", e.Email, "course", e.CourseSlug)
	return nil
}

// Log writes the notification to the log instead of sending it.
type Log struct {
	log *logger.Logger
}

func (l Log) Enrolled(_ context.Context, e Enrollment) error {
	if l.log != nil {
		l.log.Info("enrollment notification skipped, mail not configured", "email", e.Email, "course", e.CourseSlug)
	}
	return nil
}

func enrollmentMail(e Enrollment) (subject, text, body string) {
	subject = fmt.Sprintf("You are enrolled in %s", e.CourseTitle)
	text = fmt.Sprintf("Hi %s,\n\nyou now have access to %q. Happy learning!\n", e.Username, e.CourseTitle)
	body = fmt.Sprintf("<p>Hi %s,</p><p>you now have access to <strong>%s</strong>. Happy learning!</p>",
		html.EscapeString(e.Username), html.EscapeString(e.CourseTitle))
	return subject, text, body
}
