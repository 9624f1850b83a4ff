package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/taskflowhq/taskflow-api/internal/domain"
	"github.com/taskflowhq/taskflow-api/internal/platform/logger"
	"github.com/taskflowhq/taskflow-api/internal/store"
)

// ReminderStore implements the store.ReminderLog interface using PostgreSQL.
//
// The reminder_log table is the shared source of truth for which (task,
// threshold) reminders have been delivered. Because MarkSent relies on
// INSERT ... ON CONFLICT DO NOTHING against the primary key, the
// check-and-set is atomic across any number of server processes running
// scans concurrently.
type ReminderStore struct {
	db store.DBTX
}

// Compile-time check that ReminderStore satisfies store.ReminderLog.
var _ store.ReminderLog = (*ReminderStore)(nil)

// NewReminderStore creates a new ReminderStore backed by the given
// connection or transaction.
func NewReminderStore(db store.DBTX) *ReminderStore {
	return &ReminderStore{db: db}
}

// HasSent reports whether a live record exists for the given key.
func (s *ReminderStore) HasSent(ctx context.Context, key domain.ReminderKey) (bool, error) {
	log := logger.FromContext(ctx)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM reminder_log
			WHERE task_id = $1 AND threshold_hours = $2
		)
	`

	var sent bool
	err := s.db.QueryRowContext(ctx, query, key.TaskID, key.ThresholdHours).Scan(&sent)
	if err != nil {
		log.Error("failed to check reminder log",
			"reminder_key", key.String(),
			"error", err)
		return false, fmt.Errorf("failed to check reminder log: %w", MapError(err))
	}

	return sent, nil
}

// MarkSent records delivery for the given key. Conflicting inserts (the
// same key marked by a concurrent scan) are silently ignored.
func (s *ReminderStore) MarkSent(ctx context.Context, key domain.ReminderKey) error {
	log := logger.FromContext(ctx)

	query := `
		INSERT INTO reminder_log (task_id, threshold_hours, sent_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (task_id, threshold_hours) DO NOTHING
	`

	_, err := s.db.ExecContext(ctx, query, key.TaskID, key.ThresholdHours, time.Now().UTC())
	if err != nil {
		log.Error("failed to mark reminder sent",
			"reminder_key", key.String(),
			"error", err)
		return fmt.Errorf("failed to mark reminder sent: %w", MapError(err))
	}

	return nil
}

// InvalidateTask removes every reminder record for the given task. Called
// by the task mutation path when a task is completed, deleted, or its due
// date changes. Removing records for a task that has none is a no-op.
func (s *ReminderStore) InvalidateTask(ctx context.Context, taskID uuid.UUID) error {
	log := logger.FromContext(ctx)

	query := `DELETE FROM reminder_log WHERE task_id = $1`

	result, err := s.db.ExecContext(ctx, query, taskID)
	if err != nil {
		log.Error("failed to invalidate reminder records",
			"task_id", taskID,
			"error", err)
		return fmt.Errorf("failed to invalidate reminder records: %w", MapError(err))
	}

	if n, err := result.RowsAffected(); err == nil && n > 0 {
		log.Debug("invalidated reminder records",
			"task_id", taskID,
			"records", n)
	}

	return nil
}
