package cache

import (
	"context"
	"time"
)

// Store is a serializable key-value store with TTL support. Values are
// JSON round-tripped, so any encoding-compatible type works on both sides.
type Store interface {
	// Get unmarshals the value for key into dest and reports whether the
	// key existed. A missing or expired key is (false, nil), not an error.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores value under key. A zero ttl stores without expiry.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// IncrWithTTL atomically increments the integer counter at key by `by`
	// and returns the new count. The ttl is applied only when the key has
	// no expiry yet, so the window opens at the first hit and resets only
	// by natural expiry.
	IncrWithTTL(ctx context.Context, key string, by int64, ttl time.Duration) (int64, error)
}
