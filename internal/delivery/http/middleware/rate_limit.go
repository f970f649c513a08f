package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go-jobboard-backend/pkg/apperror"
	"go-jobboard-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RateLimitConfig holds configuration for one rate limit tier
type RateLimitConfig struct {
	// Requests per window
	Limit  int
	Window time.Duration
	// Key prefix in Redis, also namespaces the in-memory buckets
	KeyPrefix string
	// WritesOnly skips GET, HEAD and OPTIONS requests
	WritesOnly bool
	// Default: client IP
	KeyFunc func(*gin.Context) string
}

// Lua script for atomic increment with TTL on first set
// KEYS[1] = counter key
// ARGV[1] = TTL in seconds
// Returns: [current_count, ttl_remaining]
const rateLimitLuaScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('TTL', KEYS[1])
return {count, ttl}
`

// RateLimiter counts requests in Redis when a client is available and falls
// back to per-process token buckets otherwise. Redis errors never reject a
// request.
type RateLimiter struct {
	redis  *goredis.Client
	script *goredis.Script

	mu      sync.Mutex
	buckets map[string]*bucket
	swept   time.Time
	now     func() time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(client *goredis.Client) *RateLimiter {
	return &RateLimiter{
		redis:   client,
		script:  goredis.NewScript(rateLimitLuaScript),
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// Middleware enforces one tier. Every response carries X-RateLimit-Limit;
// rejected ones also get Retry-After and a rate_limited error envelope.
func (l *RateLimiter) Middleware(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}
	return func(c *gin.Context) {
		if cfg.WritesOnly {
			switch c.Request.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				c.Next()
				return
			}
		}
		key := cfg.KeyPrefix + cfg.KeyFunc(c)

		allowed, retryAfter := l.allow(c.Request.Context(), key, cfg)
		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
		if !allowed {
			secs := max(int(retryAfter.Seconds()), 1)
			c.Header("Retry-After", strconv.Itoa(secs))
			logger.Log.Warn("rate limit exceeded", "key", key, "path", c.FullPath())
			c.Error(apperror.New(apperror.KindRateLimited, "Rate limit exceeded. Please try again later.", nil))
			c.Abort()
			return
		}
		c.Next()
	}
}

// allow reports whether the request fits the tier and, when it does not, how
// long the client should wait.
func (l *RateLimiter) allow(ctx context.Context, key string, cfg RateLimitConfig) (bool, time.Duration) {
	if l.redis != nil {
		count, ttl, err := l.checkRedis(ctx, key, cfg)
		if err == nil {
			return count <= cfg.Limit, ttl
		}
		logger.Log.Warn("redis rate limit failed, using in-memory buckets", "error", err)
	}
	return l.checkLocal(key, cfg)
}

// checkRedis is a fixed window shared by every API instance.
// The counter and its TTL are set in one script call, so a crash between
// INCR and EXPIRE can't leave a key that never resets.
func (l *RateLimiter) checkRedis(ctx context.Context, key string, cfg RateLimitConfig) (int, time.Duration, error) {
	res, err := l.script.Run(ctx, l.redis, []string{key}, int(cfg.Window.Seconds())).Slice()
	if err != nil {
		return 0, 0, fmt.Errorf("redis rate limit eval failed: %w", err)
	}
	if len(res) < 2 {
		return 0, 0, fmt.Errorf("unexpected redis result format")
	}
	count, _ := res[0].(int64)
	ttl, _ := res[1].(int64)
	return int(count), time.Duration(ttl) * time.Second, nil
}

// checkLocal is the per-process fallback: a token bucket per key that refills
// Limit tokens per Window and can burst up to Limit.
// Limits are per instance here, so a fleet of N replicas admits up to N times
// the configured rate while Redis is down.
func (l *RateLimiter) checkLocal(key string, cfg RateLimitConfig) (bool, time.Duration) {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	// Idle buckets are swept at most once per window instead of by a
	// background goroutine, so tests can drive the clock through l.now
	if now.Sub(l.swept) > cfg.Window {
		for k, b := range l.buckets {
			if now.Sub(b.lastSeen) > cfg.Window {
				delete(l.buckets, k)
			}
		}
		l.swept = now
	}

	b, ok := l.buckets[key]
	if !ok {
		every := cfg.Window / time.Duration(max(cfg.Limit, 1))
		b = &bucket{limiter: rate.NewLimiter(rate.Every(every), cfg.Limit)}
		l.buckets[key] = b
	}
	b.lastSeen = now

	// Reserve instead of Allow so a rejection can report the wait.
	// The reservation is cancelled right away: a rejected request must not
	// consume a future token
	r := b.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, cfg.Window
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}
