package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSnapshot() TaskSnapshot {
	return TaskSnapshot{
		ID:       uuid.New(),
		Title:    "Prepare quarterly report",
		DueDate:  time.Now().Add(20 * time.Hour),
		Priority: TaskPriorityHigh,
		Status:   TaskStatusPending,
		OwnerID:  uuid.New(),
	}
}

func TestTaskSnapshotValidate(t *testing.T) {
	t.Run("valid snapshot", func(t *testing.T) {
		task := validSnapshot()
		assert.NoError(t, task.Validate())
	})

	tests := []struct {
		name    string
		mutate  func(*TaskSnapshot)
		wantErr error
	}{
		{
			name:    "empty ID",
			mutate:  func(s *TaskSnapshot) { s.ID = uuid.Nil },
			wantErr: ErrTaskIDEmpty,
		},
		{
			name:    "empty owner",
			mutate:  func(s *TaskSnapshot) { s.OwnerID = uuid.Nil },
			wantErr: ErrTaskOwnerEmpty,
		},
		{
			name:    "empty title",
			mutate:  func(s *TaskSnapshot) { s.Title = "" },
			wantErr: ErrTaskTitleEmpty,
		},
		{
			name:    "zero due date",
			mutate:  func(s *TaskSnapshot) { s.DueDate = time.Time{} },
			wantErr: ErrTaskDueDateZero,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := validSnapshot()
			tt.mutate(&task)
			err := task.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTaskSnapshotIsPending(t *testing.T) {
	task := validSnapshot()
	assert.True(t, task.IsPending())

	task.Status = TaskStatusCompleted
	assert.False(t, task.IsPending())

	task.Status = TaskStatusCancelled
	assert.False(t, task.IsPending())
}

func TestTaskSnapshotHoursUntilDue(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	task := validSnapshot()

	task.DueDate = now.Add(20 * time.Hour)
	assert.Equal(t, 20, task.HoursUntilDue(now))

	task.DueDate = now.Add(-26 * time.Hour)
	assert.Equal(t, -26, task.HoursUntilDue(now))
}
