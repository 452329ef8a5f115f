package shortener

import (
	"context"
	"time"
)

// Cache is the two-tier cache consumed by the Service. Implementations absorb
// their own failures: a broken primary tier degrades the hit rate, it never
// surfaces as an error to feature logic.
type Cache interface {
	// Get returns the cached value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool)

	// Set stores value under key for ttl.
	Set(ctx context.Context, key, value string, ttl time.Duration)

	// Delete removes key from every tier.
	Delete(ctx context.Context, key string)

	// Increment atomically adds one to the integer counter at key and returns
	// the new count.
	Increment(ctx context.Context, key string) int64
}

// ClicksKey builds the cache key for the click counter of a short code.
// Keeping key construction in one place stops formats drifting across callers.
func ClicksKey(code string) string {
	return "clicks:" + code
}
