package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Notification-specific validation errors
var (
	// ErrNotificationKindInvalid is returned when a notification kind is not recognized.
	ErrNotificationKindInvalid = errors.New("invalid notification kind")

	// ErrNotificationTargetEmpty is returned when a notification has no target.
	ErrNotificationTargetEmpty = errors.New("notification target cannot be empty")
)

// NotificationKind classifies a notification for clients.
type NotificationKind string

// Possible notification kinds.
const (
	KindReminder       NotificationKind = "reminder"
	KindUrgentReminder NotificationKind = "urgent_reminder"
	KindOverdue        NotificationKind = "overdue"
	KindStatusChanged  NotificationKind = "status_changed"
	KindAssigned       NotificationKind = "assigned"
	KindGeneric        NotificationKind = "generic"
)

// IsValid reports whether k is a recognized notification kind.
func (k NotificationKind) IsValid() bool {
	switch k {
	case KindReminder, KindUrgentReminder, KindOverdue,
		KindStatusChanged, KindAssigned, KindGeneric:
		return true
	}
	return false
}

// TargetScope identifies how a notification target is resolved to
// live connections.
type TargetScope string

// Possible target scopes.
const (
	ScopeUser      TargetScope = "user"
	ScopeRole      TargetScope = "role"
	ScopeRoom      TargetScope = "room"
	ScopeBroadcast TargetScope = "broadcast"
)

// Target addresses a notification to a set of live connections.
// The zero value is invalid; use one of the constructors.
type Target struct {
	Scope TargetScope `json:"scope"`
	// ID holds the user ID, role name, or room name depending on Scope.
	// Empty for broadcast targets.
	ID string `json:"id,omitempty"`
}

// UserTarget addresses every connection authenticated as the given user.
func UserTarget(userID uuid.UUID) Target {
	return Target{Scope: ScopeUser, ID: userID.String()}
}

// RoleTarget addresses every authenticated connection holding the given role.
func RoleTarget(role string) Target {
	return Target{Scope: ScopeRole, ID: role}
}

// RoomTarget addresses every connection that has joined the given room.
func RoomTarget(room string) Target {
	return Target{Scope: ScopeRoom, ID: room}
}

// Broadcast addresses every connected session regardless of auth state.
func Broadcast() Target {
	return Target{Scope: ScopeBroadcast}
}

// String renders the target in the user:{id} / role:{name} / room:{id} /
// broadcast form used in logs.
func (t Target) String() string {
	if t.Scope == ScopeBroadcast {
		return string(ScopeBroadcast)
	}
	return fmt.Sprintf("%s:%s", t.Scope, t.ID)
}

// Notification is a transient payload pushed to clients. It is constructed
// and consumed within a single dispatch and never persisted.
type Notification struct {
	Kind   NotificationKind       `json:"kind"`
	Target Target                 `json:"target"`
	Body   map[string]interface{} `json:"body"`
}

// Validate checks the notification for a recognized kind and a usable target.
func (n *Notification) Validate() error {
	if !n.Kind.IsValid() {
		return fmt.Errorf("%w: %q", ErrNotificationKindInvalid, n.Kind)
	}
	if n.Target.Scope != ScopeBroadcast && n.Target.ID == "" {
		return ErrNotificationTargetEmpty
	}
	return nil
}

// NewReminderNotification builds a reminder notification addressed at the
// task's owner. hoursBefore is the threshold that fired; urgent selects the
// urgent_reminder kind used by the immediate-scan path.
func NewReminderNotification(task *TaskSnapshot, hoursBefore int, urgent bool) *Notification {
	kind := KindReminder
	if urgent {
		kind = KindUrgentReminder
	}
	return &Notification{
		Kind:   kind,
		Target: UserTarget(task.OwnerID),
		Body:   reminderBody(task, hoursBefore),
	}
}

// NewOverdueNotification builds an overdue notification addressed at the
// task's owner.
func NewOverdueNotification(task *TaskSnapshot) *Notification {
	return &Notification{
		Kind:   KindOverdue,
		Target: UserTarget(task.OwnerID),
		Body:   reminderBody(task, 0),
	}
}

func reminderBody(task *TaskSnapshot, hoursBefore int) map[string]interface{} {
	return map[string]interface{}{
		"task_id":      task.ID.String(),
		"title":        task.Title,
		"due_date":     task.DueDate,
		"priority":     task.Priority,
		"hours_before": hoursBefore,
	}
}
