package mailer

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflowhq/taskflow-api/internal/config"
	"github.com/taskflowhq/taskflow-api/internal/domain"
)

func testMailer() *SMTPMailer {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(config.EmailConfig{
		SMTPHost: "localhost",
		SMTPPort: 2525,
		From:     "reminders@taskflow.example",
	}, log)
}

func testTask() *domain.TaskSnapshot {
	return &domain.TaskSnapshot{
		ID:          uuid.New(),
		Title:       "Renew certificates",
		Description: "Production TLS certificates expire soon.",
		DueDate:     time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC),
		Priority:    domain.TaskPriorityHigh,
		Status:      domain.TaskStatusPending,
		OwnerID:     uuid.New(),
		OwnerEmail:  "owner@example.com",
	}
}

func TestCompose(t *testing.T) {
	m := testMailer()

	t.Run("threshold reminder", func(t *testing.T) {
		msg, err := m.compose(testTask(), 24)
		require.NoError(t, err)

		body := string(msg)
		assert.Contains(t, body, "owner@example.com")
		assert.Contains(t, body, "reminders@taskflow.example")
		assert.Contains(t, body, "due in 24 hours")
		assert.Contains(t, body, "Renew certificates")
	})

	t.Run("overdue notice", func(t *testing.T) {
		msg, err := m.compose(testTask(), 0)
		require.NoError(t, err)
		assert.Contains(t, string(msg), "Overdue task")
	})
}

func TestSubjectFor(t *testing.T) {
	task := testTask()
	assert.Equal(t, `Reminder: "Renew certificates" is due in 6 hours`, subjectFor(task, 6))
	assert.Equal(t, "Overdue task: Renew certificates", subjectFor(task, 0))
}
