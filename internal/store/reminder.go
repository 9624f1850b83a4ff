package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/taskflowhq/taskflow-api/internal/domain"
)

// ReminderLog records which (task, threshold) reminders have already been
// delivered. It is consulted only by the interval-scan path; the immediate
// scan and the overdue sweep bypass it, accepting repeat notifications as a
// tradeoff for urgency.
//
// Implementations must be safe for concurrent use by multiple server
// processes: MarkSent has to be an atomic check-and-set against a shared
// backing store, not a per-process map, or duplicate deliveries slip
// through between instances.
type ReminderLog interface {
	// HasSent reports whether a reminder for the given key has already
	// been delivered and not since invalidated.
	HasSent(ctx context.Context, key domain.ReminderKey) (bool, error)

	// MarkSent records delivery for the given key. Marking an
	// already-marked key is a no-op, not an error.
	MarkSent(ctx context.Context, key domain.ReminderKey) error

	// InvalidateTask removes every record for the given task. The task
	// mutation path calls this when a task is completed, deleted, or its
	// due date changes, so a future reschedule can fire again.
	InvalidateTask(ctx context.Context, taskID uuid.UUID) error
}
