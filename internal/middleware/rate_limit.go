package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// Burst is the bucket size of the in-process limiter
	Burst int
	// Key prefix for Redis keys
	KeyPrefix string
}

// Decision is the outcome of one rate limit check
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time
}

// Limiter decides whether a request identified by key may proceed
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// NewLimiter returns a Redis backed limiter shared by every instance when a
// client is given, and an in-process limiter otherwise.
func NewLimiter(redisClient *redis.Client, config RateLimitConfig) Limiter {
	if config.KeyPrefix == "" {
		config.KeyPrefix = "rate_limit:ask"
	}
	if redisClient != nil {
		return NewRedisLimiter(redisClient, config)
	}
	return NewLocalLimiter(config)
}

// RedisLimiter is a fixed window counter stored in Redis
type RedisLimiter struct {
	redis  *redis.Client
	config RateLimitConfig
}

// NewRedisLimiter creates a new Redis rate limiter instance
func NewRedisLimiter(redisClient *redis.Client, config RateLimitConfig) *RedisLimiter {
	return &RedisLimiter{
		redis:  redisClient,
		config: config,
	}
}

// Allow counts the request against the current window
func (rl *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	windowStart := time.Now().Truncate(rl.config.Window)
	redisKey := fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, key, windowStart.Unix())

	pipe := rl.redis.Pipeline()
	incrCmd := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rl.config.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, err
	}

	count := int(incrCmd.Val())
	return Decision{
		Allowed:   count <= rl.config.Limit,
		Limit:     rl.config.Limit,
		Remaining: max(rl.config.Limit-count, 0),
		Reset:     windowStart.Add(rl.config.Window),
	}, nil
}

const maxTrackedClients = 10000

type localEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LocalLimiter keeps one token bucket per key in memory. Limit requests
// per Window refill the bucket, which holds at most Burst tokens.
type LocalLimiter struct {
	mu      sync.Mutex
	clients map[string]*localEntry
	config  RateLimitConfig
	every   rate.Limit
}

// NewLocalLimiter creates a new in-process rate limiter instance
func NewLocalLimiter(config RateLimitConfig) *LocalLimiter {
	config.Limit = max(config.Limit, 1)
	config.Burst = max(config.Burst, 1)
	return &LocalLimiter{
		clients: make(map[string]*localEntry),
		config:  config,
		every:   rate.Every(config.Window / time.Duration(config.Limit)),
	}
}

// Allow takes a token from the bucket of key
func (l *LocalLimiter) Allow(_ context.Context, key string) (Decision, error) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.clients[key]
	if !ok {
		if len(l.clients) >= maxTrackedClients {
			l.evictIdle(now)
		}
		entry = &localEntry{limiter: rate.NewLimiter(l.every, l.config.Burst)}
		l.clients[key] = entry
	}
	entry.lastSeen = now

	allowed := entry.limiter.AllowN(now, 1)
	tokens := entry.limiter.TokensAt(now)

	// time until the bucket is full again
	missing := float64(l.config.Burst) - tokens
	refill := time.Duration(missing / float64(l.every) * float64(time.Second))

	return Decision{
		Allowed:   allowed,
		Limit:     l.config.Burst,
		Remaining: max(int(math.Floor(tokens)), 0),
		Reset:     now.Add(refill),
	}, nil
}

func (l *LocalLimiter) evictIdle(now time.Time) {
	for key, entry := range l.clients {
		if now.Sub(entry.lastSeen) > l.config.Window {
			delete(l.clients, key)
		}
	}
}

// RateLimitMiddleware returns a Gin middleware that enforces rate limiting
// per client IP. Limiter failures let the request through.
func RateLimitMiddleware(limiter Limiter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			logger.Warn("rate limit check failed", zap.Error(err), zap.String("request_id", GetRequestID(c)))
			c.Header("X-RateLimit-Error", "rate limit check failed")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(decision.Reset.Unix(), 10))

		if !decision.Allowed {
			retryAfter := max(int(math.Ceil(time.Until(decision.Reset).Seconds())), 1)
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"message":     fmt.Sprintf("You have exceeded the rate limit of %d requests", decision.Limit),
				"retry_after": retryAfter,
			})
			return
		}

		c.Next()
	}
}
