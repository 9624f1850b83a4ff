package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/taskflowhq/taskflow-api/internal/domain"
)

// TaskSource is the read-only query surface the reminder pipeline consumes.
// Implementations must return projections, never live records; callers are
// free to hold the returned snapshots across yields without locking.
type TaskSource interface {
	// DueSoon returns pending tasks whose due date falls strictly within
	// (now, now+within]. Tasks already overdue are excluded.
	DueSoon(ctx context.Context, within time.Duration) ([]domain.TaskSnapshot, error)

	// Overdue returns pending tasks whose due date is strictly before now.
	Overdue(ctx context.Context) ([]domain.TaskSnapshot, error)

	// GetSnapshot returns the task with the given ID, or ErrTaskNotFound.
	GetSnapshot(ctx context.Context, id uuid.UUID) (*domain.TaskSnapshot, error)
}
