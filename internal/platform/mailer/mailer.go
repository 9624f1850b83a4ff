// Package mailer implements the email reminder channel over SMTP,
// composing MIME messages with emersion/go-message.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"time"

	"github.com/emersion/go-message/mail"

	"github.com/taskflowhq/taskflow-api/internal/config"
	"github.com/taskflowhq/taskflow-api/internal/domain"
	"github.com/taskflowhq/taskflow-api/internal/service/notifier"
)

// SMTPMailer sends reminder emails through a plain-auth SMTP relay.
type SMTPMailer struct {
	cfg    config.EmailConfig
	logger *slog.Logger
}

// Compile-time check that SMTPMailer satisfies notifier.EmailSender.
var _ notifier.EmailSender = (*SMTPMailer)(nil)

// New creates an SMTPMailer from the email configuration.
func New(cfg config.EmailConfig, log *slog.Logger) *SMTPMailer {
	return &SMTPMailer{
		cfg:    cfg,
		logger: log.With("component", "smtp_mailer"),
	}
}

// SendReminder composes and sends one reminder email to the task owner.
// hoursBefore zero produces the overdue variant.
func (m *SMTPMailer) SendReminder(ctx context.Context, task *domain.TaskSnapshot, hoursBefore int) error {
	if task.OwnerEmail == "" {
		return fmt.Errorf("task %s has no owner email", task.ID)
	}

	msg, err := m.compose(task, hoursBefore)
	if err != nil {
		return fmt.Errorf("failed to compose reminder email: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPHost, m.cfg.SMTPPort)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.SMTPHost)
	}

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{task.OwnerEmail}, msg); err != nil {
		return fmt.Errorf("failed to send reminder email: %w", err)
	}

	m.logger.Debug("reminder email sent",
		"task_id", task.ID,
		"recipient", task.OwnerEmail,
		"hours_before", hoursBefore)
	return nil
}

// compose builds the MIME message for a reminder.
func (m *SMTPMailer) compose(task *domain.TaskSnapshot, hoursBefore int) ([]byte, error) {
	var buf bytes.Buffer

	from := []*mail.Address{{Name: "TaskFlow", Address: m.cfg.From}}
	to := []*mail.Address{{Address: task.OwnerEmail}}

	var header mail.Header
	header.SetDate(time.Now())
	header.SetAddressList("From", from)
	header.SetAddressList("To", to)
	header.SetSubject(subjectFor(task, hoursBefore))

	mw, err := mail.CreateSingleInlineWriter(&buf, header)
	if err != nil {
		return nil, err
	}

	if _, err := fmt.Fprint(mw, bodyFor(task, hoursBefore)); err != nil {
		_ = mw.Close()
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func subjectFor(task *domain.TaskSnapshot, hoursBefore int) string {
	if hoursBefore <= 0 {
		return fmt.Sprintf("Overdue task: %s", task.Title)
	}
	return fmt.Sprintf("Reminder: %q is due in %d hours", task.Title, hoursBefore)
}

func bodyFor(task *domain.TaskSnapshot, hoursBefore int) string {
	due := task.DueDate.Format(time.RFC1123)
	if hoursBefore <= 0 {
		return fmt.Sprintf(
			"Your task %q was due on %s and is still pending.\n\n%s\n",
			task.Title, due, task.Description)
	}
	return fmt.Sprintf(
		"Your task %q is due on %s (within %d hours).\n\n%s\n",
		task.Title, due, hoursBefore, task.Description)
}
