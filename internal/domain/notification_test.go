package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTargetString(t *testing.T) {
	userID := uuid.New()

	assert.Equal(t, "user:"+userID.String(), UserTarget(userID).String())
	assert.Equal(t, "role:admin", RoleTarget("admin").String())
	assert.Equal(t, "room:task:abc", RoomTarget("task:abc").String())
	assert.Equal(t, "broadcast", Broadcast().String())
}

func TestNotificationValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		n := Notification{Kind: KindReminder, Target: UserTarget(uuid.New())}
		assert.NoError(t, n.Validate())
	})

	t.Run("broadcast needs no target ID", func(t *testing.T) {
		n := Notification{Kind: KindGeneric, Target: Broadcast()}
		assert.NoError(t, n.Validate())
	})

	t.Run("unknown kind", func(t *testing.T) {
		n := Notification{Kind: NotificationKind("mystery"), Target: Broadcast()}
		assert.ErrorIs(t, n.Validate(), ErrNotificationKindInvalid)
	})

	t.Run("missing target ID", func(t *testing.T) {
		n := Notification{Kind: KindReminder, Target: Target{Scope: ScopeUser}}
		assert.ErrorIs(t, n.Validate(), ErrNotificationTargetEmpty)
	})
}

func TestNewReminderNotification(t *testing.T) {
	task := validSnapshot()

	t.Run("interval reminder", func(t *testing.T) {
		n := NewReminderNotification(&task, 24, false)
		assert.Equal(t, KindReminder, n.Kind)
		assert.Equal(t, UserTarget(task.OwnerID), n.Target)
		assert.Equal(t, task.ID.String(), n.Body["task_id"])
		assert.Equal(t, 24, n.Body["hours_before"])
	})

	t.Run("urgent reminder", func(t *testing.T) {
		n := NewReminderNotification(&task, 1, true)
		assert.Equal(t, KindUrgentReminder, n.Kind)
	})

	t.Run("overdue", func(t *testing.T) {
		n := NewOverdueNotification(&task)
		assert.Equal(t, KindOverdue, n.Kind)
		assert.Equal(t, 0, n.Body["hours_before"])
	})
}

func TestNewReminderKey(t *testing.T) {
	taskID := uuid.New()

	key, err := NewReminderKey(taskID, 24)
	require.NoError(t, err)
	assert.Equal(t, taskID, key.TaskID)
	assert.Equal(t, 24, key.ThresholdHours)

	_, err = NewReminderKey(uuid.Nil, 24)
	assert.ErrorIs(t, err, ErrTaskIDEmpty)

	_, err = NewReminderKey(taskID, 0)
	assert.ErrorIs(t, err, ErrThresholdNotPositive)

	_, err = NewReminderKey(taskID, -6)
	assert.ErrorIs(t, err, ErrThresholdNotPositive)
}
