package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/taskflowhq/taskflow-api/internal/domain"
)

// Wire-level event names published to clients. The reminder pipeline emits
// the notification event; the task CRUD layer publishes the task_* and
// typing_* events through the same bus. All are fire-and-forget with
// at-most-once delivery.
const (
	EventTaskCreated        = "task_created"
	EventTaskUpdated        = "task_updated"
	EventTaskDeleted        = "task_deleted"
	EventTaskStatusChanged  = "task_status_changed"
	EventTaskAssigned       = "task_assigned"
	EventTypingStart        = "typing_start"
	EventTypingStop         = "typing_stop"
	EventNotification       = "notification"
	EventSystemAnnouncement = "system_announcement"
)

// NotificationEvent is one outbound message addressed to a logical channel.
// It decouples publishers (the reminder dispatcher, the task CRUD layer)
// from the wire transport that fans it out to live connections.
type NotificationEvent struct {
	// ID is a unique identifier for this event.
	ID uuid.UUID `json:"id"`

	// Name is the wire-level event name, one of the Event* constants.
	Name string `json:"name"`

	// Target selects the connections that receive the event.
	Target domain.Target `json:"target"`

	// Body is the flat payload delivered to clients.
	Body map[string]interface{} `json:"body"`

	// CreatedAt is the timestamp when the event was created.
	CreatedAt time.Time `json:"created_at"`
}

// NewNotificationEvent creates an event with the given name, target, and body.
func NewNotificationEvent(name string, target domain.Target, body map[string]interface{}) *NotificationEvent {
	return &NotificationEvent{
		ID:        uuid.New(),
		Name:      name,
		Target:    target,
		Body:      body,
		CreatedAt: time.Now(),
	}
}

// FromNotification builds the wire event for a notification payload.
func FromNotification(n *domain.Notification) *NotificationEvent {
	body := make(map[string]interface{}, len(n.Body)+1)
	for k, v := range n.Body {
		body[k] = v
	}
	body["kind"] = string(n.Kind)
	return NewNotificationEvent(EventNotification, n.Target, body)
}

// Handler defines an interface for components that consume events,
// typically the realtime hub.
type Handler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *NotificationEvent) error
}

// Emitter defines an interface for components that publish events.
// This allows services to publish without direct knowledge of handlers.
type Emitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *NotificationEvent) error
}
