package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/gapmap-ai/gapmap-backend/internal/logger"
)

const rateKeyPrefix = "ratelimit:" // ratelimit:{scope}:{user}:{window}

// Limiter decides whether key may make another request.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RedisLimiter is a fixed-window counter shared by every API instance.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, limit: limit, window: window, now: time.Now}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	bucket := l.now().UnixNano() / int64(l.window)
	k := rateKeyPrefix + key + ":" + strconv.FormatInt(bucket, 10)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit counter: %w", err)
	}
	return incr.Val() <= int64(l.limit), nil
}

// MemoryLimiter is a per-process token bucket per key, used when Redis is
// not configured.
type MemoryLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	every   rate.Limit
	burst   int
}

func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		buckets: map[string]*rate.Limiter{},
		every:   rate.Every(window / time.Duration(limit)),
		burst:   limit,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = rate.NewLimiter(l.every, l.burst)
		l.buckets[key] = b
	}
	l.mu.Unlock()
	return b.Allow(), nil
}

// RateLimit rejects callers over their quota with 429. The key is the
// authenticated user, or the client IP when there is none. Limiter errors
// let the request through.
func RateLimit(l Limiter, scope string, base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		who := c.GetString("firebase_uid")
		if who == "" {
			who = "ip:" + c.ClientIP()
		}

		ok, err := l.Allow(c.Request.Context(), scope+":"+who)
		if err != nil {
			logger.For(c.Request.Context(), base, "rate_limit").Warn("limiter unavailable, allowing request", zap.Error(err))
			c.Next()
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   "Too many requests. Please slow down.",
			})
			return
		}
		c.Next()
	}
}
