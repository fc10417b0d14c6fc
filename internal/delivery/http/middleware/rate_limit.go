package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"applyfollow-backend/internal/delivery/http/response"
	"applyfollow-backend/internal/domain"
	"applyfollow-backend/pkg/logger"
	"applyfollow-backend/pkg/security"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

// RateLimitConfig holds configuration for one rate limit policy.
type RateLimitConfig struct {
	Limit  int
	Window time.Duration
	// KeyFunc extracts the bucket key (default: client IP).
	KeyFunc func(*gin.Context) string
	// KeyPrefix namespaces the Redis key, e.g. "rl:ip:".
	KeyPrefix string
	// FailClosed rejects requests when Redis errors instead of falling
	// back to the in-memory counter.
	FailClosed bool
}

type rateLimitEntry struct {
	mu      sync.Mutex
	count   int
	resetAt time.Time
}

// KEYS[1] = counter key, ARGV[1] = TTL in seconds.
// Returns {current_count, ttl_remaining}.
const rateLimitLuaScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('TTL', KEYS[1])
return {count, ttl}
`

// RateLimiter counts requests in Redis when a client is configured and
// in process memory otherwise.
type RateLimiter struct {
	client *goredis.Client
	audit  *security.AuditLogger
	now    func() time.Time

	store       sync.Map
	cleanupOnce sync.Once
}

func NewRateLimiter(client *goredis.Client, audit *security.AuditLogger) *RateLimiter {
	return &RateLimiter{
		client: client,
		audit:  audit,
		now:    time.Now,
	}
}

// IPRateLimitConfig limits by client IP.
func IPRateLimitConfig(prefix string, limit int, window time.Duration, failClosed bool) RateLimitConfig {
	return RateLimitConfig{
		Limit:      limit,
		Window:     window,
		KeyPrefix:  prefix,
		FailClosed: failClosed,
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	}
}

// Middleware enforces cfg on every request that passes through it.
func (rl *RateLimiter) Middleware(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	rl.cleanupOnce.Do(rl.startCleanup)

	return func(c *gin.Context) {
		if cfg.Limit <= 0 {
			c.Next()
			return
		}

		key := cfg.KeyPrefix + cfg.KeyFunc(c)

		var count int
		var resetAt time.Time
		if rl.client != nil {
			var err error
			count, resetAt, err = rl.checkRedis(c.Request.Context(), key, cfg)
			if err != nil {
				if cfg.FailClosed {
					logger.Log.Error("rate limit store unavailable", "key_prefix", cfg.KeyPrefix, "error", err)
					response.Error(c, http.StatusServiceUnavailable, "Service temporarily unavailable. Please try again.", nil)
					c.Abort()
					return
				}
				count, resetAt = rl.checkInMemory(key, cfg)
			}
		} else {
			count, resetAt = rl.checkInMemory(key, cfg)
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
		c.Header("X-RateLimit-Reset", resetAt.Format(time.RFC3339))

		if count > cfg.Limit {
			retryAfter := int(resetAt.Sub(rl.now()).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			rl.logTriggered(c, cfg.KeyPrefix)
			response.Error(c, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", nil)
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(cfg.Limit-count))
		c.Next()
	}
}

func (rl *RateLimiter) checkRedis(ctx context.Context, key string, cfg RateLimitConfig) (int, time.Time, error) {
	ttlSeconds := int(cfg.Window.Seconds())
	if ttlSeconds < 1 {
		ttlSeconds = 1
	}

	result, err := rl.client.Eval(ctx, rateLimitLuaScript, []string{key}, ttlSeconds).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis rate limit eval: %w", err)
	}

	arr, ok := result.([]interface{})
	if !ok || len(arr) < 2 {
		return 0, time.Time{}, fmt.Errorf("unexpected redis result %T", result)
	}
	count, _ := arr[0].(int64)
	ttl, _ := arr[1].(int64)

	return int(count), rl.now().Add(time.Duration(ttl) * time.Second), nil
}

func (rl *RateLimiter) checkInMemory(key string, cfg RateLimitConfig) (int, time.Time) {
	now := rl.now()
	entryI, _ := rl.store.LoadOrStore(key, &rateLimitEntry{resetAt: now.Add(cfg.Window)})
	entry := entryI.(*rateLimitEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if now.After(entry.resetAt) {
		entry.count = 0
		entry.resetAt = now.Add(cfg.Window)
	}
	entry.count++
	return entry.count, entry.resetAt
}

// startCleanup drops expired in-memory buckets every five minutes.
func (rl *RateLimiter) startCleanup() {
	if rl.client != nil {
		return
	}
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			rl.purgeExpired()
		}
	}()
}

func (rl *RateLimiter) purgeExpired() {
	now := rl.now()
	rl.store.Range(func(key, value interface{}) bool {
		entry := value.(*rateLimitEntry)
		entry.mu.Lock()
		if now.After(entry.resetAt) {
			rl.store.Delete(key)
		}
		entry.mu.Unlock()
		return true
	})
}

func (rl *RateLimiter) logTriggered(c *gin.Context, prefix string) {
	if rl.audit == nil {
		return
	}
	rl.audit.Log(c.Request.Context(), security.Event{
		Type:         security.EventRateLimitTriggered,
		SubjectType:  "ip",
		SubjectValue: c.ClientIP(),
		IP:           c.ClientIP(),
		UserAgent:    c.GetHeader("User-Agent"),
		RequestID:    c.GetString(string(domain.KeyRequestID)),
		Details:      map[string]interface{}{"path": c.FullPath(), "policy": prefix},
	})
}
