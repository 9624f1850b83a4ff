package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/taskflowhq/taskflow-api/internal/domain"
	"github.com/taskflowhq/taskflow-api/internal/events"
	"github.com/taskflowhq/taskflow-api/internal/store"
)

// emailRetryAttempts is how many times a failed email send is retried
// before the failure is logged and swallowed.
const emailRetryAttempts = 2

// Dispatcher builds notification payloads and fans them out across the
// realtime and email channels. Channel failures are isolated: the email
// collaborator throwing never aborts the realtime delivery or the
// caller's scan loop.
type Dispatcher struct {
	reminders store.ReminderLog
	emitter   events.Emitter
	email     EmailSender
	logger    *slog.Logger

	mu              sync.RWMutex
	emailEnabled    bool
	realtimeEnabled bool

	// Base delay for email retry backoff; shortened in tests.
	emailRetryBase time.Duration
}

// NewDispatcher creates a dispatcher with the given channel toggles.
func NewDispatcher(
	reminders store.ReminderLog,
	emitter events.Emitter,
	email EmailSender,
	emailEnabled, realtimeEnabled bool,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		reminders:       reminders,
		emitter:         emitter,
		email:           email,
		logger:          logger.With("component", "notification_dispatcher"),
		emailEnabled:    emailEnabled,
		realtimeEnabled: realtimeEnabled,
		emailRetryBase:  500 * time.Millisecond,
	}
}

// Configure replaces the channel toggles; called when the reminder
// configuration is swapped at runtime.
func (d *Dispatcher) Configure(emailEnabled, realtimeEnabled bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.emailEnabled = emailEnabled
	d.realtimeEnabled = realtimeEnabled
}

func (d *Dispatcher) channels() (email, realtime bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.emailEnabled, d.realtimeEnabled
}

// DispatchIfNeeded delivers a reminder for the given threshold unless the
// deduplication log shows it was already sent. Urgent dispatches bypass
// the log entirely, on both the check and the record side: the immediate
// scan is expected to re-notify every tick.
func (d *Dispatcher) DispatchIfNeeded(ctx context.Context, task *domain.TaskSnapshot, thresholdHours int, urgent bool) error {
	var key domain.ReminderKey
	if !urgent {
		var err error
		key, err = domain.NewReminderKey(task.ID, thresholdHours)
		if err != nil {
			return fmt.Errorf("invalid reminder key: %w", err)
		}

		sent, err := d.reminders.HasSent(ctx, key)
		if err != nil {
			return fmt.Errorf("failed to consult reminder log: %w", err)
		}
		if sent {
			d.logger.Debug("reminder already sent, skipping",
				"reminder_key", key.String())
			return nil
		}
	}

	d.deliver(ctx, task, domain.NewReminderNotification(task, thresholdHours, urgent), thresholdHours)

	if !urgent {
		if err := d.reminders.MarkSent(ctx, key); err != nil {
			return fmt.Errorf("failed to record reminder delivery: %w", err)
		}
	}
	return nil
}

// DispatchOverdue delivers an overdue notice. Overdue dispatch is never
// deduplicated: every sweep re-notifies for tasks still overdue.
func (d *Dispatcher) DispatchOverdue(ctx context.Context, task *domain.TaskSnapshot) error {
	d.deliver(ctx, task, domain.NewOverdueNotification(task), 0)
	return nil
}

// deliver pushes one notification through the enabled channels. The
// realtime push is an in-process enqueue and its error is only logged;
// the email send may do slow network I/O and is wrapped in a retry,
// with the final failure logged and swallowed.
func (d *Dispatcher) deliver(ctx context.Context, task *domain.TaskSnapshot, n *domain.Notification, hoursBefore int) {
	emailEnabled, realtimeEnabled := d.channels()

	if realtimeEnabled {
		if err := d.emitter.EmitEvent(ctx, events.FromNotification(n)); err != nil {
			d.logger.Error("failed to emit realtime notification",
				"task_id", task.ID,
				"kind", string(n.Kind),
				"error", err)
		}
	}

	if emailEnabled {
		if err := d.sendEmail(ctx, task, hoursBefore); err != nil {
			d.logger.Error("email delivery failed, notification dropped on that channel",
				"task_id", task.ID,
				"owner_id", task.OwnerID,
				"kind", string(n.Kind),
				"error", err)
		}
	}
}

func (d *Dispatcher) sendEmail(ctx context.Context, task *domain.TaskSnapshot, hoursBefore int) error {
	backoff := retry.WithMaxRetries(emailRetryAttempts, retry.NewExponential(d.emailRetryBase))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := d.email.SendReminder(ctx, task, hoursBefore); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}
