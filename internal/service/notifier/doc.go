// Package notifier composes notification payloads and fans them out
// across the realtime and email channels with per-channel failure
// isolation. The dispatcher is the only component that writes to the
// reminder deduplication log.
package notifier
