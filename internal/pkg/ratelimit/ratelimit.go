package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/learnhub-api/internal/domain"
	"github.com/learnhub-api/internal/infrastructure/cache"
)

// Limiter is a fixed-window counter backed by the shared cache. Counters
// are keyed {scope}:{identifier}; the window opens on the first hit and
// resets only by natural expiry. A request that exceeds the limit has
// already been counted — this trades leaky-bucket precision for a single
// atomic cache operation per check. A burst straddling a window boundary
// can pass up to 2x the limit; accepted behavior.
type Limiter struct {
	store cache.Store
}

func NewLimiter(store cache.Store) *Limiter {
	return &Limiter{store: store}
}

// Check increments the counter for {scope}:{identifier} and returns
// domain.ErrRateLimited when the post-increment count exceeds limit.
func (l *Limiter) Check(ctx context.Context, scope, identifier string, limit int, window time.Duration) error {
	key := fmt.Sprintf("%s:%s", scope, strings.ToLower(identifier))
	count, err := l.store.IncrWithTTL(ctx, key, 1, window)
	if err != nil {
		return fmt.Errorf("rate limit check for %s: %w", key, err)
	}
	if count > int64(limit) {
		return fmt.Errorf("too many %s attempts: %w", scope, domain.ErrRateLimited)
	}
	return nil
}
