package notifier

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/taskflowhq/taskflow-api/internal/events"
	"github.com/taskflowhq/taskflow-api/internal/store"
)

// ReminderInvalidator clears a task's reminder log entries when a task
// mutation event crosses the bus. A rescheduled or reopened task then
// gets a fresh round of reminders instead of being suppressed by stale
// records.
type ReminderInvalidator struct {
	reminders store.ReminderLog
	logger    *slog.Logger
}

var _ events.Handler = (*ReminderInvalidator)(nil)

// NewReminderInvalidator creates an invalidator over the given log.
func NewReminderInvalidator(reminders store.ReminderLog, log *slog.Logger) *ReminderInvalidator {
	return &ReminderInvalidator{
		reminders: reminders,
		logger:    log.With("component", "reminder_invalidator"),
	}
}

// HandleEvent implements events.Handler. Only task mutation events that
// can change due-date or status are acted on; everything else passes
// through untouched.
func (i *ReminderInvalidator) HandleEvent(ctx context.Context, event *events.NotificationEvent) error {
	switch event.Name {
	case events.EventTaskUpdated, events.EventTaskDeleted, events.EventTaskStatusChanged:
	default:
		return nil
	}

	rawID, ok := event.Body["task_id"].(string)
	if !ok {
		i.logger.Warn("task mutation event without task_id, skipping",
			"event_name", event.Name,
			"event_id", event.ID)
		return nil
	}
	taskID, err := uuid.Parse(rawID)
	if err != nil {
		i.logger.Warn("task mutation event with malformed task_id, skipping",
			"event_name", event.Name,
			"task_id", rawID)
		return nil
	}

	if err := i.reminders.InvalidateTask(ctx, taskID); err != nil {
		i.logger.Error("failed to invalidate reminder records",
			"task_id", taskID,
			"event_name", event.Name,
			"error", err)
		return err
	}

	i.logger.Debug("reminder records invalidated",
		"task_id", taskID,
		"event_name", event.Name)
	return nil
}
