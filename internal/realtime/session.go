package realtime

import (
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// SessionState is the lifecycle state of one connection.
type SessionState int

// Session lifecycle: Connected (unauthenticated) -> Authenticated -> Closed.
const (
	StateConnected SessionState = iota
	StateAuthenticated
	StateClosed
)

// sendBufferSize bounds the per-connection outbound queue. A consumer
// that falls this far behind is dropped rather than allowed to stall
// delivery to everyone else.
const sendBufferSize = 64

// Session is the per-connection state owned exclusively by the hub's
// event loop. The transport pumps only touch conn and send; every other
// field is read and written on the hub goroutine alone, which is what
// makes the state machine lock-free.
type Session struct {
	id   string
	conn *websocket.Conn
	send chan []byte

	state  SessionState
	userID uuid.UUID
	role   string
	rooms  map[string]struct{}
}

// NewSession creates a session in the Connected (unauthenticated) state.
// conn may be nil in tests that drive the hub directly.
func NewSession(conn *websocket.Conn) *Session {
	return &Session{
		id:    uuid.New().String(),
		conn:  conn,
		send:  make(chan []byte, sendBufferSize),
		state: StateConnected,
		rooms: make(map[string]struct{}),
	}
}

// ID returns the connection's unique identifier.
func (s *Session) ID() string { return s.id }

// Send returns the channel the write pump drains. The hub closes it when
// the session ends; the write pump responds by closing the transport.
func (s *Session) Send() <-chan []byte { return s.send }

// authenticated reports whether the session has completed the handshake.
func (s *Session) authenticated() bool { return s.state == StateAuthenticated }

// enqueue pushes an encoded frame to the session without blocking the hub
// loop. Returns false when the buffer is full, which the hub treats as a
// dead consumer.
func (s *Session) enqueue(frame []byte) bool {
	select {
	case s.send <- frame:
		return true
	default:
		return false
	}
}
