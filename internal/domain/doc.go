// Package domain contains the core entities of the reminder pipeline:
// read-only task snapshots, notification payloads and their targets, and
// the (task, threshold) keys that identify reminder obligations.
//
// The package has no dependencies on storage, transport, or scheduling;
// those layers depend on it.
package domain
