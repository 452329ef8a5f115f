package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/tinyurl-go/internal/shortener"
	"go.uber.org/zap"
)

// Layer is the two-tier cache. Redis is the primary tier; the in-process
// Fallback mirrors every write and serves reads when the primary misses or is
// unavailable. Primary failures are logged and absorbed, never returned: a
// broken Redis only degrades the hit rate. A nil client runs the layer in
// fallback-only mode.
type Layer struct {
	client     *redis.Client
	fallback   *Fallback
	defaultTTL time.Duration
	logger     *zap.Logger
}

// NewLayer creates a cache layer. client may be nil when no Redis is
// configured. defaultTTL is used for counter entries created on the fallback
// increment path.
func NewLayer(client *redis.Client, fallback *Fallback, defaultTTL time.Duration, logger *zap.Logger) *Layer {
	return &Layer{
		client:     client,
		fallback:   fallback,
		defaultTTL: defaultTTL,
		logger:     logger,
	}
}

// Get looks key up in the primary tier, demoting any miss or error to a
// fallback read. Expired fallback entries are swept before the lookup.
func (l *Layer) Get(ctx context.Context, key string) (string, bool) {
	if l.client != nil {
		value, err := l.client.Get(ctx, key).Result()
		if err == nil {
			return value, true
		}

		if !errors.Is(err, redis.Nil) {
			l.logger.Warn("redis get failed, reading fallback",
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}

	l.fallback.Sweep()

	return l.fallback.Get(key)
}

// Set writes key through to the primary tier and always mirrors it into the
// fallback, so the fallback can serve during a primary outage.
func (l *Layer) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if l.client != nil {
		if err := l.client.Set(ctx, key, value, ttl).Err(); err != nil {
			l.logger.Warn("redis set failed, fallback holds the only copy",
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}

	l.fallback.Set(key, value, ttl)
}

// Delete removes key from both tiers. The primary delete is best effort.
func (l *Layer) Delete(ctx context.Context, key string) {
	if l.client != nil {
		if err := l.client.Del(ctx, key).Err(); err != nil {
			l.logger.Warn("redis delete failed",
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}

	l.fallback.Delete(key)
}

// Increment adds one to the counter at key via an atomic primary INCR. When
// the primary is unavailable it falls back to the Fallback's per-key atomic
// read-modify-write, treating absent or garbage values as zero.
func (l *Layer) Increment(ctx context.Context, key string) int64 {
	if l.client != nil {
		count, err := l.client.Incr(ctx, key).Result()
		if err == nil {
			return count
		}

		l.logger.Warn("redis incr failed, incrementing fallback",
			zap.String("key", key),
			zap.Error(err),
		)
	}

	next := l.fallback.Update(key, l.defaultTTL, func(current string, ok bool) string {
		var count int64

		if ok {
			if n, err := strconv.ParseInt(current, 10, 64); err == nil {
				count = n
			}
		}

		return strconv.FormatInt(count+1, 10)
	})

	count, _ := strconv.ParseInt(next, 10, 64)

	return count
}

// Compile-time check.
var _ shortener.Cache = (*Layer)(nil)
