package realtime

import (
	"sync"

	"github.com/google/uuid"
)

// Presence tracks which users currently have at least one live connection.
// Registrations are driven exclusively by the hub's event loop, but reads
// (IsOnline, OnlineUserIDs) may come from HTTP handlers on other
// goroutines, so access is guarded by a mutex.
//
// This in-process registry is correct for a single-instance deployment.
// Horizontal scaling requires swapping it for a shared presence store;
// it is injected behind the Registry interface for exactly that reason.
type Presence struct {
	mu    sync.RWMutex
	conns map[uuid.UUID]map[string]struct{}
}

// Registry is the presence surface consumed by the hub and by HTTP
// handlers that need to answer "is this user online".
type Registry interface {
	// Register records a connection for a user. Registering the same
	// pair twice is idempotent. Returns true if this is the user's
	// first live connection.
	Register(userID uuid.UUID, connID string) bool

	// Unregister removes a connection from its owner's set. Returns true
	// if this was the user's last live connection, which flips the user
	// offline from that instant.
	Unregister(userID uuid.UUID, connID string) bool

	// IsOnline reports whether the user has at least one live connection.
	IsOnline(userID uuid.UUID) bool

	// OnlineUserIDs returns the set of users with live connections.
	OnlineUserIDs() []uuid.UUID
}

// Compile-time check that Presence satisfies Registry.
var _ Registry = (*Presence)(nil)

// NewPresence creates an empty presence registry.
func NewPresence() *Presence {
	return &Presence{conns: make(map[uuid.UUID]map[string]struct{})}
}

// Register records a connection for a user.
func (p *Presence) Register(userID uuid.UUID, connID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	set, ok := p.conns[userID]
	if !ok {
		set = make(map[string]struct{})
		p.conns[userID] = set
	}
	first := len(set) == 0
	set[connID] = struct{}{}
	return first
}

// Unregister removes a connection from its owner's set. When the set
// becomes empty, the user entry is removed entirely.
func (p *Presence) Unregister(userID uuid.UUID, connID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	set, ok := p.conns[userID]
	if !ok {
		return false
	}
	if _, ok := set[connID]; !ok {
		return false
	}
	delete(set, connID)
	if len(set) == 0 {
		delete(p.conns, userID)
		return true
	}
	return false
}

// IsOnline reports whether the user has at least one live connection.
func (p *Presence) IsOnline(userID uuid.UUID) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.conns[userID]) > 0
}

// OnlineUserIDs returns the users currently online, in no particular order.
func (p *Presence) OnlineUserIDs() []uuid.UUID {
	p.mu.RLock()
	defer p.mu.RUnlock()

	ids := make([]uuid.UUID, 0, len(p.conns))
	for id := range p.conns {
		ids = append(ids, id)
	}
	return ids
}
