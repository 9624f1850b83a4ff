// Package store defines the persistence interfaces consumed by the
// reminder pipeline and the errors their implementations return.
// Concrete implementations live in internal/platform/postgres.
package store
