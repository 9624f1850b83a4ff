package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflowhq/taskflow-api/internal/domain"
)

// recordingHandler captures events for assertions and can be configured
// to fail.
type recordingHandler struct {
	HandledCount int
	LastEvent    *NotificationEvent
	HandlerError error
}

func (h *recordingHandler) HandleEvent(_ context.Context, event *NotificationEvent) error {
	h.HandledCount++
	h.LastEvent = event
	return h.HandlerError
}

func TestInMemoryEmitter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("emit event with no handlers", func(t *testing.T) {
		emitter := NewInMemoryEmitter(logger)
		event := NewNotificationEvent(EventNotification, domain.Broadcast(), nil)

		// Should not error even with no handlers
		assert.NoError(t, emitter.EmitEvent(context.Background(), event))
	})

	t.Run("emit event reaches all handlers", func(t *testing.T) {
		emitter := NewInMemoryEmitter(logger)
		handler1 := &recordingHandler{}
		handler2 := &recordingHandler{}
		emitter.RegisterHandler(handler1)
		emitter.RegisterHandler(handler2)

		event := NewNotificationEvent(EventTaskCreated, domain.RoleTarget("admin"),
			map[string]interface{}{"title": "new task"})
		require.NoError(t, emitter.EmitEvent(context.Background(), event))

		assert.Equal(t, 1, handler1.HandledCount)
		assert.Equal(t, 1, handler2.HandledCount)
		assert.Equal(t, event, handler1.LastEvent)
		assert.Equal(t, event, handler2.LastEvent)
	})

	t.Run("failing handler does not block others", func(t *testing.T) {
		emitter := NewInMemoryEmitter(logger)
		failing := &recordingHandler{HandlerError: errors.New("handler error")}
		succeeding := &recordingHandler{}
		emitter.RegisterHandler(failing)
		emitter.RegisterHandler(succeeding)

		event := NewNotificationEvent(EventNotification, domain.Broadcast(), nil)
		err := emitter.EmitEvent(context.Background(), event)

		assert.EqualError(t, err, "handler error")
		assert.Equal(t, 1, succeeding.HandledCount)
	})
}

func TestFromNotification(t *testing.T) {
	ownerID := uuid.New()
	n := &domain.Notification{
		Kind:   domain.KindUrgentReminder,
		Target: domain.UserTarget(ownerID),
		Body:   map[string]interface{}{"task_id": "t1", "hours_before": 1},
	}

	event := FromNotification(n)

	assert.Equal(t, EventNotification, event.Name)
	assert.Equal(t, domain.UserTarget(ownerID), event.Target)
	assert.Equal(t, "urgent_reminder", event.Body["kind"])
	assert.Equal(t, "t1", event.Body["task_id"])
	assert.NotEqual(t, uuid.Nil, event.ID)

	// The source notification body must not be mutated.
	_, hasKind := n.Body["kind"]
	assert.False(t, hasKind)
}
