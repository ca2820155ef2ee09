package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/tradingzen/backend/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimiterConfig defines rate limiting rules
type RateLimiterConfig struct {
	MaxRequests int           // Maximum requests allowed in the window
	Window      time.Duration // Time window (e.g., 1 minute)
}

// Limiter decides whether one more request from key is allowed. When it is
// not, retryAfter says how long the client should wait.
type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
}

// RedisLimiter is a fixed window counter shared by every API instance.
type RedisLimiter struct {
	redis  *redis.Client
	config RateLimiterConfig
}

func NewRedisLimiter(client *redis.Client, config RateLimiterConfig) *RedisLimiter {
	return &RedisLimiter{redis: client, config: config}
}

func (rl *RedisLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	redisKey := "ratelimit:" + key

	count, err := rl.redis.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, 0, err
	}

	// Set expiry on first request of the window
	if count == 1 {
		if err := rl.redis.Expire(ctx, redisKey, rl.config.Window).Err(); err != nil {
			return false, 0, err
		}
	}

	if count > int64(rl.config.MaxRequests) {
		ttl, err := rl.redis.TTL(ctx, redisKey).Result()
		if err != nil || ttl <= 0 {
			ttl = rl.config.Window
		}
		return false, ttl, nil
	}

	return true, 0, nil
}

// LocalLimiter is an in-process token bucket per key, used when no Redis is
// configured. Limits are per instance.
type LocalLimiter struct {
	mu       sync.Mutex
	limiters map[string]*localEntry
	config   RateLimiterConfig
	every    time.Duration
}

type localEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const localLimiterMaxKeys = 10000

func NewLocalLimiter(config RateLimiterConfig) *LocalLimiter {
	every := config.Window
	if config.MaxRequests > 0 {
		every = config.Window / time.Duration(config.MaxRequests)
	}
	return &LocalLimiter{
		limiters: make(map[string]*localEntry),
		config:   config,
		every:    every,
	}
}

func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	entry, ok := l.limiters[key]
	if !ok {
		if len(l.limiters) >= localLimiterMaxKeys {
			l.prune(now)
		}
		entry = &localEntry{limiter: rate.NewLimiter(rate.Every(l.every), l.config.MaxRequests)}
		l.limiters[key] = entry
	}
	entry.lastSeen = now

	if entry.limiter.AllowN(now, 1) {
		return true, 0, nil
	}
	return false, l.every, nil
}

// prune drops keys idle for longer than a window. Caller holds mu.
func (l *LocalLimiter) prune(now time.Time) {
	for key, entry := range l.limiters {
		if now.Sub(entry.lastSeen) > l.config.Window {
			delete(l.limiters, key)
		}
	}
}

// RateLimit limits requests per client IP. Limiter errors fail open.
func RateLimit(limiter Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		allowed, retryAfter, err := limiter.Allow(c.Request.Context(), clientIP)
		if err != nil {
			logger.Log.Warn("Rate limiter unavailable, allowing request",
				zap.String("client_ip", clientIP),
				zap.Error(err),
			)
			c.Next()
			return
		}

		if !allowed {
			seconds := int(math.Ceil(retryAfter.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", fmt.Sprintf("%d", seconds))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Too many requests. Please try again later.",
				"retry_after": seconds,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
