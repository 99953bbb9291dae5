package ratelimit

import (
	"context"
	"time"
)

// Store is the shared log of recent request records, reachable from every
// gate instance. It has no rate-limiting semantics of its own: records are
// appended, counted, and deleted, never updated.
type Store interface {
	// Record appends one request record for the client. Many records per
	// client are expected; there is no uniqueness constraint on clientID.
	Record(ctx context.Context, clientID string, at time.Time) error

	// CountSince returns how many records exist for the client recorded at or
	// after since.
	CountSince(ctx context.Context, clientID string, since time.Time) (int64, error)

	// OldestSince returns the timestamp of the oldest surviving record for the
	// client at or after since. found is false when no record exists or the
	// backend cannot answer cheaply.
	OldestSince(ctx context.Context, clientID string, since time.Time) (oldest time.Time, found bool, err error)

	// DeleteOlderThan removes records older than threshold across all clients
	// and returns how many were removed. Safe to call redundantly.
	DeleteOlderThan(ctx context.Context, threshold time.Time) (int64, error)
}
