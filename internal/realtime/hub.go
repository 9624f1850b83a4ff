package realtime

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/taskflowhq/taskflow-api/internal/domain"
	"github.com/taskflowhq/taskflow-api/internal/events"
	"github.com/taskflowhq/taskflow-api/internal/platform/logger"
	"github.com/taskflowhq/taskflow-api/internal/service/auth"
)

// RoomPolicy decides whether an authenticated user may join a task room.
// Whether task rooms are open collaboration boards or owner-restricted is
// a deployment decision, so the policy is injected rather than hard-wired.
type RoomPolicy func(userID uuid.UUID, role string, taskID string) bool

// AllowAllRooms is the default policy: any authenticated connection may
// join any task room.
func AllowAllRooms(uuid.UUID, string, string) bool { return true }

// command pairs an inbound client message with its originating session.
type command struct {
	session *Session
	msg     ClientMessage
}

// Hub owns every connection session, room membership, and the presence
// registry updates. All state lives on a single event-loop goroutine:
// registrations, inbound commands, and outbound publishes are funneled
// through channels, so session and room maps never need locking.
type Hub struct {
	logger   *slog.Logger
	verifier auth.TokenVerifier
	presence Registry
	policy   RoomPolicy

	sessions map[string]*Session
	rooms    map[string]map[string]*Session

	register   chan *Session
	unregister chan *Session
	commands   chan command
	outbound   chan *events.NotificationEvent
	done       chan struct{}
}

// Compile-time check that Hub consumes the event bus.
var _ events.Handler = (*Hub)(nil)

// NewHub creates a hub. A nil policy defaults to AllowAllRooms.
func NewHub(verifier auth.TokenVerifier, presence Registry, policy RoomPolicy, log *slog.Logger) *Hub {
	if policy == nil {
		policy = AllowAllRooms
	}
	return &Hub{
		logger:     log.With("component", "realtime_hub"),
		verifier:   verifier,
		presence:   presence,
		policy:     policy,
		sessions:   make(map[string]*Session),
		rooms:      make(map[string]map[string]*Session),
		register:   make(chan *Session),
		unregister: make(chan *Session),
		commands:   make(chan command, 64),
		outbound:   make(chan *events.NotificationEvent, 256),
		done:       make(chan struct{}),
	}
}

// Run processes hub events until ctx is cancelled. It must be called
// exactly once; every session is closed on the way out.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		for _, s := range h.sessions {
			h.closeSession(s)
		}
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("realtime hub stopping", "open_sessions", len(h.sessions))
			return
		case s := <-h.register:
			h.handleRegister(s)
		case s := <-h.unregister:
			h.handleUnregister(s)
		case cmd := <-h.commands:
			h.handleCommand(ctx, cmd.session, cmd.msg)
		case ev := <-h.outbound:
			h.handleOutbound(ev)
		}
	}
}

// Register hands a freshly-upgraded connection to the hub loop.
func (h *Hub) Register(s *Session) {
	select {
	case h.register <- s:
	case <-h.done:
	}
}

// Unregister removes a connection; safe to call more than once.
func (h *Hub) Unregister(s *Session) {
	select {
	case h.unregister <- s:
	case <-h.done:
	}
}

// Dispatch feeds an inbound client message to the hub loop.
func (h *Hub) Dispatch(s *Session, msg ClientMessage) {
	select {
	case h.commands <- command{session: s, msg: msg}:
	case <-h.done:
	}
}

// HandleEvent implements events.Handler. Delivery is fire-and-forget: if
// the hub has stopped the event is dropped, matching the at-most-once
// contract of the event catalog.
func (h *Hub) HandleEvent(ctx context.Context, event *events.NotificationEvent) error {
	select {
	case h.outbound <- event:
		return nil
	case <-h.done:
		h.logger.Debug("dropping event, hub stopped", "event_name", event.Name)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) handleRegister(s *Session) {
	h.sessions[s.id] = s
	h.logger.Debug("connection registered",
		"conn_id", s.id,
		"open_sessions", len(h.sessions))
}

func (h *Hub) handleUnregister(s *Session) {
	if _, ok := h.sessions[s.id]; !ok {
		return
	}
	delete(h.sessions, s.id)

	for room := range s.rooms {
		h.leaveRoom(s, room)
	}

	if s.authenticated() {
		if last := h.presence.Unregister(s.userID, s.id); last {
			h.broadcastPresence(s.userID, false)
		}
	}

	h.closeSession(s)
	h.logger.Debug("connection unregistered",
		"conn_id", s.id,
		"open_sessions", len(h.sessions))
}

func (h *Hub) closeSession(s *Session) {
	if s.state == StateClosed {
		return
	}
	s.state = StateClosed
	close(s.send)
}

func (h *Hub) handleCommand(ctx context.Context, s *Session, msg ClientMessage) {
	if s.state == StateClosed {
		return
	}

	switch msg.Event {
	case CmdAuthenticate:
		h.authenticate(ctx, s, msg.Data)
	case CmdJoinTaskRoom:
		h.joinTaskRoom(s, msg.Data)
	case CmdLeaveTaskRoom:
		h.leaveTaskRoom(s, msg.Data)
	default:
		h.logger.Debug("ignoring unknown command",
			"conn_id", s.id,
			"event", msg.Event)
	}
}

// authenticate runs the credential handshake. Failure is the only error a
// client ever sees: an authentication_error event followed by a forced
// close. Other connections are unaffected.
func (h *Hub) authenticate(ctx context.Context, s *Session, token string) {
	identity, err := h.verifier.Verify(logger.WithLogger(ctx, h.logger), token)
	if err != nil {
		h.logger.Info("authentication failed, closing connection",
			"conn_id", s.id,
			"error", err)
		h.sendTo(s, AckAuthenticationError, map[string]interface{}{
			"message": err.Error(),
		})
		h.handleUnregister(s)
		return
	}

	if s.authenticated() {
		// Repeat handshake with a valid token is idempotent.
		h.sendTo(s, AckAuthenticated, map[string]interface{}{"success": true})
		return
	}

	s.state = StateAuthenticated
	s.userID = identity.UserID
	s.role = identity.Role

	h.joinRoom(s, UserRoom(identity.UserID))
	if identity.Role != "" {
		h.joinRoom(s, RoleRoom(identity.Role))
	}

	if first := h.presence.Register(identity.UserID, s.id); first {
		h.broadcastPresence(identity.UserID, true)
	}

	h.sendTo(s, AckAuthenticated, map[string]interface{}{"success": true})
	h.logger.Info("connection authenticated",
		"conn_id", s.id,
		"user_id", identity.UserID,
		"role", identity.Role)
}

func (h *Hub) joinTaskRoom(s *Session, taskID string) {
	if !s.authenticated() {
		h.sendTo(s, AckAuthenticationError, map[string]interface{}{
			"message": "authentication required",
		})
		return
	}
	if !h.policy(s.userID, s.role, taskID) {
		h.logger.Info("room join denied by policy",
			"conn_id", s.id,
			"user_id", s.userID,
			"task_id", taskID)
		return
	}

	h.joinRoom(s, TaskRoom(taskID))
	h.sendTo(s, AckJoinedTaskRoom, map[string]interface{}{"taskId": taskID})
}

func (h *Hub) leaveTaskRoom(s *Session, taskID string) {
	if !s.authenticated() {
		return
	}
	h.leaveRoom(s, TaskRoom(taskID))
	delete(s.rooms, TaskRoom(taskID))
	h.sendTo(s, AckLeftTaskRoom, map[string]interface{}{"taskId": taskID})
}

func (h *Hub) joinRoom(s *Session, room string) {
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[string]*Session)
		h.rooms[room] = members
	}
	members[s.id] = s
	s.rooms[room] = struct{}{}
}

// leaveRoom removes the session from the hub-side membership map only;
// callers owning s.rooms clean that side up themselves.
func (h *Hub) leaveRoom(s *Session, room string) {
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, s.id)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// handleOutbound resolves an event's target to live sessions and pushes
// the encoded frame to each. Delivery is best-effort: an unmatched target
// is dropped silently, and a consumer with a full buffer is disconnected
// rather than awaited.
func (h *Hub) handleOutbound(ev *events.NotificationEvent) {
	frame, err := ServerMessage{Event: ev.Name, Data: ev.Body}.Encode()
	if err != nil {
		h.logger.Error("failed to encode outbound event",
			"event_name", ev.Name,
			"error", err)
		return
	}

	targets := h.resolveTarget(ev)
	if len(targets) == 0 {
		h.logger.Debug("no connections matched target, dropping event",
			"event_name", ev.Name,
			"target", ev.Target.String())
		return
	}

	for _, s := range targets {
		if !s.enqueue(frame) {
			h.logger.Warn("send buffer full, dropping connection",
				"conn_id", s.id,
				"user_id", s.userID)
			h.handleUnregister(s)
		}
	}
}

func (h *Hub) resolveTarget(ev *events.NotificationEvent) []*Session {
	roomFor := func(room string) []*Session {
		members := h.rooms[room]
		out := make([]*Session, 0, len(members))
		for _, s := range members {
			out = append(out, s)
		}
		return out
	}

	switch ev.Target.Scope {
	case domain.ScopeUser:
		return roomFor("user:" + ev.Target.ID)
	case domain.ScopeRole:
		return roomFor("role:" + ev.Target.ID)
	case domain.ScopeRoom:
		return roomFor(ev.Target.ID)
	case domain.ScopeBroadcast:
		out := make([]*Session, 0, len(h.sessions))
		for _, s := range h.sessions {
			out = append(out, s)
		}
		return out
	default:
		h.logger.Warn("unknown target scope, dropping event",
			"scope", string(ev.Target.Scope))
		return nil
	}
}

// broadcastPresence announces a user coming online or going offline to
// every connected session, including unauthenticated ones.
func (h *Hub) broadcastPresence(userID uuid.UUID, online bool) {
	frame, err := ServerMessage{
		Event: EventPresenceChanged,
		Data: map[string]interface{}{
			"userId": userID.String(),
			"online": online,
		},
	}.Encode()
	if err != nil {
		h.logger.Error("failed to encode presence event", "error", err)
		return
	}
	for _, s := range h.sessions {
		if !s.enqueue(frame) {
			h.handleUnregister(s)
		}
	}
}

func (h *Hub) sendTo(s *Session, event string, data interface{}) {
	frame, err := ServerMessage{Event: event, Data: data}.Encode()
	if err != nil {
		h.logger.Error("failed to encode message",
			"event", event,
			"error", err)
		return
	}
	if !s.enqueue(frame) {
		h.logger.Warn("send buffer full, dropping connection", "conn_id", s.id)
		h.handleUnregister(s)
	}
}
