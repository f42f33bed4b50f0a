// Package vault persists application state snapshots to string storage.
//
// A Store writes through a primary Backend with a secondary fallback,
// isolates demo data from real data under a shared key space, refuses
// oversized snapshots before touching storage, and self-heals corrupted
// entries on read. Backends are injected so tests run against in-memory
// doubles and alternate platforms (file directory, SQLite) share one
// contract.
package vault

import "errors"

// Backend is a flat string key/value store.
//
// Get reports absence via the bool; an error means the backend itself
// failed. Set must either store the full value or fail without partial
// effects. Implementations are safe for use from a single logical thread;
// concurrent writers get last-write-wins, which is acceptable for a
// single-user local-first tool.
type Backend interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
	Clear() error
	Keys() ([]string, error)
}

// ErrQuotaExceeded is returned by a Backend whose capacity is exhausted.
// The store treats it like any other write failure and falls back.
var ErrQuotaExceeded = errors.New("storage quota exceeded")
