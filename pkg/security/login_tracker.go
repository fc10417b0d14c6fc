package security

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// LoginTrackerConfig holds configuration for login tracking
type LoginTrackerConfig struct {
	MaxAttempts   int           // failed attempts before block
	AttemptWindow time.Duration // window for counting attempts
	BlockDuration time.Duration // how long a block lasts
}

// DefaultLoginTrackerConfig returns sensible defaults
func DefaultLoginTrackerConfig() LoginTrackerConfig {
	return LoginTrackerConfig{
		MaxAttempts:   5,
		AttemptWindow: 15 * time.Minute,
		BlockDuration: 15 * time.Minute,
	}
}

// Redis key patterns
const (
	failLoginUserPrefix    = "fail:login:user:"
	blockedLoginUserPrefix = "blocked:login:user:"
)

// Atomic increment that sets the TTL on the first hit.
const incrWithTTLScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
return count
`

// LoginTracker counts failed logins per email and blocks an email after
// too many failures. Redis is used when available; otherwise state is kept
// in process memory.
type LoginTracker struct {
	config LoginTrackerConfig
	client *goredis.Client
	audit  *AuditLogger

	mu       sync.Mutex
	attempts map[string]memoryCounter
	blocks   map[string]time.Time
	now      func() time.Time
}

type memoryCounter struct {
	count   int
	expires time.Time
}

func NewLoginTracker(config LoginTrackerConfig, client *goredis.Client, audit *AuditLogger) *LoginTracker {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = DefaultLoginTrackerConfig().MaxAttempts
	}
	if config.AttemptWindow <= 0 {
		config.AttemptWindow = DefaultLoginTrackerConfig().AttemptWindow
	}
	if config.BlockDuration <= 0 {
		config.BlockDuration = DefaultLoginTrackerConfig().BlockDuration
	}
	if audit == nil {
		audit = NewAuditLoggerWith(nil)
	}
	return &LoginTracker{
		config:   config,
		client:   client,
		audit:    audit,
		attempts: make(map[string]memoryCounter),
		blocks:   make(map[string]time.Time),
		now:      time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsBlocked checks if the given email is currently blocked.
func (lt *LoginTracker) IsBlocked(ctx context.Context, email string) (bool, error) {
	email = normalizeEmail(email)

	if lt.client == nil {
		lt.mu.Lock()
		defer lt.mu.Unlock()
		until, ok := lt.blocks[email]
		if !ok {
			return false, nil
		}
		if lt.now().After(until) {
			delete(lt.blocks, email)
			return false, nil
		}
		return true, nil
	}

	exists, err := lt.client.Exists(ctx, blockedLoginUserPrefix+email).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check user block: %w", err)
	}
	return exists > 0, nil
}

// RecordFailedAttempt records a failed login attempt.
// Returns (blocked, currentAttempts, error).
func (lt *LoginTracker) RecordFailedAttempt(ctx context.Context, email, ip string) (bool, int, error) {
	email = normalizeEmail(email)
	lt.audit.LoginFailed(ctx, email, ip, "invalid_credentials")

	count, err := lt.increment(ctx, email)
	if err != nil {
		return false, 0, err
	}

	if count < lt.config.MaxAttempts {
		return false, count, nil
	}

	if err := lt.block(ctx, email); err != nil {
		return true, count, fmt.Errorf("failed to create block: %w", err)
	}
	lt.audit.Log(ctx, Event{
		Type:         EventLoginBlocked,
		SubjectType:  "email",
		SubjectValue: email,
		IP:           ip,
		Details:      map[string]interface{}{"duration_minutes": int(lt.config.BlockDuration.Minutes())},
	})
	return true, count, nil
}

func (lt *LoginTracker) increment(ctx context.Context, email string) (int, error) {
	if lt.client == nil {
		lt.mu.Lock()
		defer lt.mu.Unlock()
		now := lt.now()
		c := lt.attempts[email]
		if now.After(c.expires) {
			c = memoryCounter{expires: now.Add(lt.config.AttemptWindow)}
		}
		c.count++
		lt.attempts[email] = c
		return c.count, nil
	}

	ttl := int(lt.config.AttemptWindow.Seconds())
	result, err := lt.client.Eval(ctx, incrWithTTLScript, []string{failLoginUserPrefix + email}, ttl).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment user counter: %w", err)
	}
	count, ok := result.(int64)
	if !ok {
		return 0, errors.New("unexpected result type from Lua script")
	}
	return int(count), nil
}

func (lt *LoginTracker) block(ctx context.Context, email string) error {
	if lt.client == nil {
		lt.mu.Lock()
		lt.blocks[email] = lt.now().Add(lt.config.BlockDuration)
		delete(lt.attempts, email)
		lt.mu.Unlock()
		return nil
	}
	return lt.client.Set(ctx, blockedLoginUserPrefix+email, "1", lt.config.BlockDuration).Err()
}

// ClearAttempts clears failed login attempts on successful login
func (lt *LoginTracker) ClearAttempts(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if lt.client == nil {
		lt.mu.Lock()
		delete(lt.attempts, email)
		lt.mu.Unlock()
		return nil
	}
	if err := lt.client.Del(ctx, failLoginUserPrefix+email).Err(); err != nil {
		return fmt.Errorf("failed to clear user attempts: %w", err)
	}
	return nil
}
