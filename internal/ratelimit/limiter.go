// Package ratelimit bounds request rates per client identity using a fixed
// window counter. The limiter is soft abuse deterrence, not correctness: on
// any backing-store failure it fails open, because blocking a legitimate
// payment flow costs more than letting an abuser through.
package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Result is the outcome of one rate limit check
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Limiter checks whether a client identity may proceed. Implementations never
// return an error: infrastructure failures translate to an allowed result.
type Limiter interface {
	Check(ctx context.Context, identity string, limit int, window time.Duration) Result
}

// RedisLimiter counts requests in redis, shared across instances
type RedisLimiter struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

// NewRedisLimiter creates a redis-backed fixed window limiter
func NewRedisLimiter(client *redis.Client, prefix string, logger *zap.Logger) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		prefix: prefix,
		logger: logger,
	}
}

func (l *RedisLimiter) Check(ctx context.Context, identity string, limit int, window time.Duration) Result {
	now := time.Now()
	windowIndex := now.UnixMilli() / window.Milliseconds()
	key := fmt.Sprintf("%s:%s:%d", l.prefix, identity, windowIndex)
	resetAt := time.UnixMilli((windowIndex + 1) * window.Milliseconds())

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		// Fail open: commerce availability beats perfect abuse protection.
		l.logger.Warn("Rate limiter backend unavailable, failing open",
			zap.String("identity", identity),
			zap.Error(err))
		return Result{Allowed: true, Limit: limit, Remaining: limit, ResetAt: resetAt}
	}

	// Set expiry only on the request that created the key
	if count == 1 {
		if err := l.client.Expire(ctx, key, window).Err(); err != nil {
			l.logger.Warn("Failed to set rate limit key expiry",
				zap.String("key", key),
				zap.Error(err))
		}
	}

	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return Result{
		Allowed:   int(count) <= limit,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
}

// MemoryLimiter is the single-instance fallback used when redis is not
// configured. Counts are lost on restart and not shared across instances;
// acceptable because the limiter's only job is soft abuse deterrence.
type MemoryLimiter struct {
	mu      sync.Mutex
	counts  map[string]int
	maxKeys int
}

// NewMemoryLimiter creates an in-memory fixed window limiter
func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		counts:  make(map[string]int),
		maxKeys: 1000,
	}
}

func (l *MemoryLimiter) Check(_ context.Context, identity string, limit int, window time.Duration) Result {
	now := time.Now()
	windowIndex := now.UnixMilli() / window.Milliseconds()
	key := fmt.Sprintf("%s:%d", identity, windowIndex)
	resetAt := time.UnixMilli((windowIndex + 1) * window.Milliseconds())

	l.mu.Lock()
	defer l.mu.Unlock()

	l.counts[key]++
	count := l.counts[key]

	if len(l.counts) > l.maxKeys {
		l.prune(windowIndex)
	}

	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}

	return Result{
		Allowed:   count <= limit,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
}

// prune drops entries from windows older than the previous one. Caller holds
// the lock. Window indexes are the numeric suffix of each key.
func (l *MemoryLimiter) prune(currentWindow int64) {
	cutoff := fmt.Sprintf(":%d", currentWindow-1)
	current := fmt.Sprintf(":%d", currentWindow)
	for k := range l.counts {
		if !strings.HasSuffix(k, cutoff) && !strings.HasSuffix(k, current) {
			delete(l.counts, k)
		}
	}
}
