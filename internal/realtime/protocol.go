package realtime

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Inbound command names accepted from clients.
const (
	CmdAuthenticate  = "authenticate"
	CmdJoinTaskRoom  = "join_task_room"
	CmdLeaveTaskRoom = "leave_task_room"
)

// Outbound acknowledgement names sent to clients.
const (
	AckAuthenticated       = "authenticated"
	AckAuthenticationError = "authentication_error"
	AckJoinedTaskRoom      = "joined_task_room"
	AckLeftTaskRoom        = "left_task_room"
)

// EventPresenceChanged is broadcast when a user's first connection arrives
// or their last connection leaves.
const EventPresenceChanged = "presence_changed"

// ClientMessage is the envelope for inbound commands. Every recognized
// command carries an opaque string payload: a bearer token for
// authenticate, a task ID for the room commands.
type ClientMessage struct {
	Event string `json:"event"`
	Data  string `json:"data"`
}

// ServerMessage is the envelope for outbound events and acknowledgements.
type ServerMessage struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Encode marshals the message for the wire. Encoding failures indicate a
// programming error in the payload type and are returned to the caller
// rather than silently dropped.
func (m ServerMessage) Encode() ([]byte, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode server message %q: %w", m.Event, err)
	}
	return b, nil
}

// Implicit room names. Authenticated sessions automatically join their
// user and role rooms; task rooms are joined explicitly by command.

// UserRoom returns the implicit room holding all of a user's connections.
func UserRoom(userID uuid.UUID) string {
	return "user:" + userID.String()
}

// RoleRoom returns the implicit room holding all connections with a role.
func RoleRoom(role string) string {
	return "role:" + role
}

// TaskRoom returns the collaboration room name for a task.
func TaskRoom(taskID string) string {
	return "task:" + taskID
}
