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

// TaskStore implements the store.TaskSource interface using PostgreSQL.
// It only reads task projections; the reminder pipeline never mutates
// task rows.
type TaskStore struct {
	db store.DBTX
}

// Compile-time check that TaskStore satisfies store.TaskSource.
var _ store.TaskSource = (*TaskStore)(nil)

// NewTaskStore creates a new TaskStore backed by the given connection
// or transaction.
func NewTaskStore(db store.DBTX) *TaskStore {
	return &TaskStore{db: db}
}

const taskColumns = `t.id, t.title, t.description, t.due_date, t.priority, t.status, t.owner_id, u.email`

// DueSoon returns pending tasks whose due date falls strictly within
// (now, now+within], ordered soonest first.
func (s *TaskStore) DueSoon(ctx context.Context, within time.Duration) ([]domain.TaskSnapshot, error) {
	log := logger.FromContext(ctx)

	query := `
		SELECT ` + taskColumns + `
		FROM tasks t
		JOIN users u ON u.id = t.owner_id
		WHERE t.status = $1
		  AND t.due_date > $2
		  AND t.due_date <= $3
		ORDER BY t.due_date ASC
	`

	now := time.Now().UTC()
	rows, err := s.db.QueryContext(ctx, query, domain.TaskStatusPending, now, now.Add(within))
	if err != nil {
		log.Error("failed to query due tasks",
			"within", within.String(),
			"error", err)
		return nil, fmt.Errorf("failed to query due tasks: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	return scanTasks(rows)
}

// Overdue returns pending tasks whose due date is strictly before now,
// most overdue first.
func (s *TaskStore) Overdue(ctx context.Context) ([]domain.TaskSnapshot, error) {
	log := logger.FromContext(ctx)

	query := `
		SELECT ` + taskColumns + `
		FROM tasks t
		JOIN users u ON u.id = t.owner_id
		WHERE t.status = $1
		  AND t.due_date < $2
		ORDER BY t.due_date ASC
	`

	rows, err := s.db.QueryContext(ctx, query, domain.TaskStatusPending, time.Now().UTC())
	if err != nil {
		log.Error("failed to query overdue tasks", "error", err)
		return nil, fmt.Errorf("failed to query overdue tasks: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	return scanTasks(rows)
}

// GetSnapshot returns the task with the given ID, or store.ErrTaskNotFound.
func (s *TaskStore) GetSnapshot(ctx context.Context, id uuid.UUID) (*domain.TaskSnapshot, error) {
	log := logger.FromContext(ctx)

	query := `
		SELECT ` + taskColumns + `
		FROM tasks t
		JOIN users u ON u.id = t.owner_id
		WHERE t.id = $1
	`

	var task domain.TaskSnapshot
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.DueDate,
		&task.Priority,
		&task.Status,
		&task.OwnerID,
		&task.OwnerEmail,
	)
	if err != nil {
		if IsNotFoundError(MapError(err)) {
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task snapshot",
			"task_id", id,
			"error", err)
		return nil, fmt.Errorf("failed to get task snapshot: %w", MapError(err))
	}

	return &task, nil
}

// rowScanner abstracts *sql.Rows for scanning task projections.
type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanTasks(rows rowScanner) ([]domain.TaskSnapshot, error) {
	var tasks []domain.TaskSnapshot
	for rows.Next() {
		var task domain.TaskSnapshot
		if err := rows.Scan(
			&task.ID,
			&task.Title,
			&task.Description,
			&task.DueDate,
			&task.Priority,
			&task.Status,
			&task.OwnerID,
			&task.OwnerEmail,
		); err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", MapError(err))
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate task rows: %w", MapError(err))
	}
	return tasks, nil
}
