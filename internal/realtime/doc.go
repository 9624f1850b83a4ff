// Package realtime implements the websocket gateway: connection lifecycle
// and the authenticate handshake, room membership, presence tracking, and
// fanout of notification events to user, role, room, and broadcast
// targets.
//
// All connection state is owned by a single hub goroutine; the transport
// pumps and outside publishers communicate with it exclusively through
// channels. Delivery is fire-and-forget with at-most-once semantics: an
// event whose target matches no live connection is dropped, not queued.
package realtime
