package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	"github.com/ucu/innovators-hub/internal/app/models/dto"
	"github.com/ucu/innovators-hub/internal/pkg/logger"
	"golang.org/x/time/rate"
)

// RateLimitConfig configures RateLimiter
type RateLimitConfig struct {
	Limit    redis_rate.Limit
	KeyFunc  func(*gin.Context) string
	FailOpen bool
}

// RateLimiter limits requests per key, counting in redis when a client is
// given and in process memory otherwise or when redis fails.
type RateLimiter struct {
	limiter  *redis_rate.Limiter
	fallback *localLimiter
	config   RateLimitConfig
}

// NewRateLimiter creates a RateLimiter; rdb may be nil
func NewRateLimiter(rdb *redis.Client, cfg RateLimitConfig) *RateLimiter {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = KeyByIP
	}
	rl := &RateLimiter{fallback: newLocalLimiter(), config: cfg}
	if rdb != nil {
		rl.limiter = redis_rate.NewLimiter(rdb)
	}
	return rl
}

// Handler returns the gin middleware
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := rl.config.KeyFunc(c)
		res, err := rl.allow(c.Request.Context(), key)
		if err != nil {
			if rl.config.FailOpen {
				logger.Warn().Err(err).Str("key", key).Msg("Rate limiter error, failing open")
				c.Next()
				return
			}
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, dto.NewErrorResponse(
				dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Service unavailable")))
			return
		}

		setRateLimitHeaders(c, res, rl.config.Limit)

		if res.Allowed == 0 {
			retryAfter := int(res.RetryAfter.Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			detail := dto.NewErrorDetail(dto.ErrorCodeTooManyRequests, "Too many requests, please try again later").
				WithSeverity(dto.ErrorSeverityWarning).
				WithDetails(fmt.Sprintf("retry after %d seconds", retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponse(detail))
			return
		}

		c.Next()
	}
}

func (rl *RateLimiter) allow(ctx context.Context, key string) (*redis_rate.Result, error) {
	if rl.limiter == nil {
		return rl.fallback.allow(key, rl.config.Limit)
	}
	res, err := rl.limiter.Allow(ctx, key, rl.config.Limit)
	if err != nil {
		logger.Debug().Err(err).Msg("Redis rate limiter unavailable, using local limiter")
		return rl.fallback.allow(key, rl.config.Limit)
	}
	return res, nil
}

// Close stops the local limiter cleanup
func (rl *RateLimiter) Close() {
	rl.fallback.stop()
}

// KeyByIP keys requests by client address
func KeyByIP(c *gin.Context) string {
	return "ratelimit:ip:" + c.ClientIP()
}

func setRateLimitHeaders(c *gin.Context, res *redis_rate.Result, limit redis_rate.Limit) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(limit.Rate))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(res.ResetAfter).Unix(), 10))
	c.Header("RateLimit-Policy", fmt.Sprintf("%d;w=%d", limit.Rate, int(limit.Period.Seconds())))
}

// Window builds a limit of requests per period
func Window(requests, burst int, period time.Duration) redis_rate.Limit {
	if burst <= 0 {
		burst = requests
	}
	return redis_rate.Limit{Rate: requests, Burst: burst, Period: period}
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess atomic.Int64
}

type localLimiter struct {
	limiters sync.Map
	done     chan struct{}
	once     sync.Once
}

const (
	cleanupInterval = 5 * time.Minute
	entryTTL        = 10 * time.Minute
)

func newLocalLimiter() *localLimiter {
	l := &localLimiter{done: make(chan struct{})}
	go l.cleanup()
	return l
}

func (l *localLimiter) stop() {
	l.once.Do(func() { close(l.done) })
}

func (l *localLimiter) cleanup() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.done:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-entryTTL).Unix()
			l.limiters.Range(func(key, value any) bool {
				if entry, ok := value.(*limiterEntry); ok && entry.lastAccess.Load() < cutoff {
					l.limiters.Delete(key)
				}
				return true
			})
		}
	}
}

func (l *localLimiter) allow(key string, limit redis_rate.Limit) (*redis_rate.Result, error) {
	ratePerSec := float64(limit.Rate) / limit.Period.Seconds()
	now := time.Now().Unix()

	entryI, loaded := l.limiters.Load(key)
	if !loaded {
		entry := &limiterEntry{limiter: rate.NewLimiter(rate.Limit(ratePerSec), limit.Burst)}
		entry.lastAccess.Store(now)
		entryI, _ = l.limiters.LoadOrStore(key, entry)
	}
	entry, ok := entryI.(*limiterEntry)
	if !ok {
		return nil, fmt.Errorf("invalid limiter entry type")
	}
	entry.lastAccess.Store(now)

	allowed := entry.limiter.Allow()
	remaining := int(entry.limiter.Tokens())
	if remaining < 0 {
		remaining = 0
	}

	res := &redis_rate.Result{
		Limit:      limit,
		Remaining:  remaining,
		RetryAfter: -1,
		ResetAfter: time.Duration(float64(time.Second) / ratePerSec),
	}
	if allowed {
		res.Allowed = 1
	} else {
		res.RetryAfter = time.Duration(float64(time.Second) / ratePerSec)
	}
	return res, nil
}
