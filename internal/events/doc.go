// Package events provides the internal publish/subscribe bus between
// business logic and the realtime transport. Publishers address events to
// logical channels (user, role, room, broadcast); the realtime hub
// subscribes and resolves those channels to live connections.
package events
