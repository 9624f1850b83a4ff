package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Reminder-specific validation errors
var (
	// ErrThresholdNotPositive is returned when a reminder threshold is zero or negative.
	ErrThresholdNotPositive = errors.New("reminder threshold must be a positive number of hours")
)

// ReminderKey identifies one reminder obligation: the pair of a task and
// the hours-before-due threshold that triggers it. At most one reminder is
// delivered per live key; the corresponding record is invalidated when the
// task completes, is deleted, or its due date changes.
type ReminderKey struct {
	TaskID         uuid.UUID
	ThresholdHours int
}

// NewReminderKey builds a ReminderKey, validating its parts.
func NewReminderKey(taskID uuid.UUID, thresholdHours int) (ReminderKey, error) {
	if taskID == uuid.Nil {
		return ReminderKey{}, ErrTaskIDEmpty
	}
	if thresholdHours <= 0 {
		return ReminderKey{}, fmt.Errorf("%w: got %d", ErrThresholdNotPositive, thresholdHours)
	}
	return ReminderKey{TaskID: taskID, ThresholdHours: thresholdHours}, nil
}

// String renders the key in the task:threshold form used in logs.
func (k ReminderKey) String() string {
	return fmt.Sprintf("%s:%dh", k.TaskID, k.ThresholdHours)
}

// ReminderRecord marks that the reminder identified by Key was delivered
// at SentAt. Records live in a shared durable store so that multiple
// server processes agree on what has already been sent.
type ReminderRecord struct {
	Key    ReminderKey
	SentAt time.Time
}
