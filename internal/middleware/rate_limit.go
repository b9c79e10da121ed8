package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pageza/recipegen/backend/internal/apperrors"
	"github.com/pageza/recipegen/backend/internal/metrics"
	"github.com/pageza/recipegen/backend/internal/types"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// Key prefix for Redis keys
	KeyPrefix string
}

// Limiter counts requests per caller in fixed windows
type Limiter interface {
	IsAllowed(ctx context.Context, identity string) (bool, int, time.Time, error)
	Status(ctx context.Context, identity string) (types.RateLimitStatus, error)
	Config() RateLimitConfig
}

// RateLimiter handles rate limiting using Redis
type RateLimiter struct {
	redis  *redis.Client
	config RateLimitConfig
}

// NewRateLimiter creates a new rate limiter instance
func NewRateLimiter(redisClient *redis.Client, config RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		redis:  redisClient,
		config: config,
	}
}

// NewGenerationRateLimiter limits recipe generation per caller
func NewGenerationRateLimiter(redisClient *redis.Client, limit int, window time.Duration) *RateLimiter {
	return NewRateLimiter(redisClient, RateLimitConfig{
		Window:    window,
		Limit:     limit,
		KeyPrefix: "rate_limit:recipe_generation",
	})
}

func (rl *RateLimiter) Config() RateLimitConfig {
	return rl.config
}

func (rl *RateLimiter) key(identity string, windowStart time.Time) string {
	return fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, identity, windowStart.Unix())
}

// IsAllowed counts a request from identity and reports whether it fits the window
// Returns: allowed, remaining requests, reset time, error
func (rl *RateLimiter) IsAllowed(ctx context.Context, identity string) (bool, int, time.Time, error) {
	windowStart := time.Now().Truncate(rl.config.Window)
	key := rl.key(identity, windowStart)

	pipe := rl.redis.TxPipeline()
	incrCmd := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, rl.config.Window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, time.Time{}, err
	}

	count := int(incrCmd.Val())
	remaining := rl.config.Limit - count
	if remaining < 0 {
		remaining = 0
	}

	return count <= rl.config.Limit, remaining, windowStart.Add(rl.config.Window), nil
}

// Status reports the remaining budget without counting a request
func (rl *RateLimiter) Status(ctx context.Context, identity string) (types.RateLimitStatus, error) {
	windowStart := time.Now().Truncate(rl.config.Window)
	status := types.RateLimitStatus{
		Limit:     rl.config.Limit,
		Remaining: rl.config.Limit,
		ResetTime: windowStart.Add(rl.config.Window).Unix(),
		Window:    rl.config.Window.String(),
	}

	count, err := rl.redis.Get(ctx, rl.key(identity, windowStart)).Int()
	if err == redis.Nil {
		return status, nil
	}
	if err != nil {
		return types.RateLimitStatus{}, err
	}

	status.Remaining = rl.config.Limit - count
	if status.Remaining < 0 {
		status.Remaining = 0
	}
	return status, nil
}

// RateLimitIdentity keys the limit on the session email, falling back to the
// client IP for anonymous callers
func RateLimitIdentity(c *gin.Context) string {
	if email, ok := SessionEmail(c); ok {
		return "user:" + email
	}
	return "ip:" + c.ClientIP()
}

// RateLimitMiddleware returns a Gin middleware that enforces rate limiting.
// Requests pass when the counter store is unreachable.
func RateLimitMiddleware(limiter Limiter, m *metrics.Metrics, logger *zap.Logger) gin.HandlerFunc {
	cfg := limiter.Config()

	return func(c *gin.Context) {
		allowed, remaining, resetTime, err := limiter.IsAllowed(c.Request.Context(), RateLimitIdentity(c))
		if err != nil {
			logger.Warn("rate limit check failed",
				zap.String("request_id", RequestIDFrom(c)),
				zap.Error(err),
			)
			c.Header("X-RateLimit-Error", "rate limit check failed")
			c.Next()
			return
		}

		// Set rate limit headers
		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			retryAfter := int(time.Until(resetTime).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			m.RateLimited()
			Abort(c, apperrors.RateLimited(fmt.Sprintf("You have exceeded the rate limit of %d requests per %v", cfg.Limit, cfg.Window)))
			return
		}

		c.Next()
	}
}
