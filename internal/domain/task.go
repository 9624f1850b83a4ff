package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Task-specific validation errors
var (
	// ErrTaskIDEmpty is returned when a task ID is empty or nil.
	ErrTaskIDEmpty = errors.New("task ID cannot be empty")

	// ErrTaskOwnerEmpty is returned when a task's owner ID is empty or nil.
	ErrTaskOwnerEmpty = errors.New("task owner ID cannot be empty")

	// ErrTaskTitleEmpty is returned when a task's title is empty.
	ErrTaskTitleEmpty = errors.New("task title cannot be empty")

	// ErrTaskDueDateZero is returned when a task's due date is the zero time.
	ErrTaskDueDateZero = errors.New("task due date cannot be zero")
)

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

// Possible task status values.
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// TaskPriority represents the urgency classification of a task.
type TaskPriority string

// Possible task priority values.
const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// TaskSnapshot is a read-only projection of a task as it existed at query
// time. The reminder pipeline never mutates it; staleness is acceptable
// because every scan tick re-queries the source.
type TaskSnapshot struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	DueDate     time.Time    `json:"due_date"`
	Priority    TaskPriority `json:"priority"`
	Status      TaskStatus   `json:"status"`
	OwnerID     uuid.UUID    `json:"owner_id"`
	// OwnerEmail is denormalized into the snapshot so the email channel
	// needs no second lookup.
	OwnerEmail string `json:"owner_email,omitempty"`
}

// Validate checks that the snapshot contains the fields the reminder
// pipeline depends on. Returns a validation error describing the first
// problem found, or nil if the snapshot is well-formed.
func (t *TaskSnapshot) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTaskIDEmpty
	}
	if t.OwnerID == uuid.Nil {
		return ErrTaskOwnerEmpty
	}
	if t.Title == "" {
		return ErrTaskTitleEmpty
	}
	if t.DueDate.IsZero() {
		return ErrTaskDueDateZero
	}
	return nil
}

// IsPending reports whether the task is still awaiting completion.
// Only pending tasks are eligible for reminders.
func (t *TaskSnapshot) IsPending() bool {
	return t.Status == TaskStatusPending
}

// HoursUntilDue returns the number of whole hours between now and the
// task's due date. Negative values indicate the task is overdue.
func (t *TaskSnapshot) HoursUntilDue(now time.Time) int {
	return int(t.DueDate.Sub(now).Hours())
}
