// Package genstore keeps a monotonically increasing generation per key.
// The versioning stage bumps it on every committed write; storage compares it
// with the version framed into a stored entry to detect stale copies.
package genstore

import (
	"context"
	"time"
)

// GenStore abstracts where generations live: in-process (Local) or shared
// between nodes (Redis).
type GenStore interface {
	// Current returns the generation of key; missing => 0.
	Current(ctx context.Context, key string) (uint64, error)
	// Bump atomically increments and returns the new generation.
	Bump(ctx context.Context, key string) (uint64, error)
	// Cleanup prunes generations idle for longer than retention (no-op for Redis).
	Cleanup(retention time.Duration)
	Close(context.Context) error
}
