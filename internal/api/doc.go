// Package api contains the HTTP handlers, error mapping, and request
// helpers for the public API surface.
package api
