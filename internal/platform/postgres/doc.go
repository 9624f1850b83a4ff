// Package postgres provides PostgreSQL implementations of the store
// interfaces: the read-only task snapshot source the scheduler scans,
// and the shared reminder log that deduplicates interval reminders
// across server processes.
package postgres
