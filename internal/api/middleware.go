package api

import (
	"net/http"
	"time"

	"MeetMind/internal/config"
	"MeetMind/pkg/circuitbreaker"
	"MeetMind/pkg/ratelimiter"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TraceIDKey is the gin context key holding the per-request trace id.
const TraceIDKey = "traceID"

// TraceIDMiddleware 为每个请求分配一个 trace id，优先沿用调用方通过
// X-Trace-ID 头传入的值，便于跨服务追踪。
func TraceIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader("X-Trace-ID")
		if traceID == "" {
			traceID = uuid.NewString()
		}
		c.Set(TraceIDKey, traceID)
		c.Writer.Header().Set("X-Trace-ID", traceID)
		c.Next()
	}
}

// RateLimitMiddleware 根据配置构建限流中间件。配置关闭或算法未知时
// 返回 nil，调用方据此跳过注册。
func RateLimitMiddleware(cfg config.RateLimiterConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return nil
	}

	var limiter ratelimiter.RateLimiter
	switch cfg.Algorithm {
	case "tokenBucket":
		limiter = ratelimiter.NewTokenBucket(cfg.TokenBucket.Rate, cfg.TokenBucket.Capacity)
	case "fixedWindow":
		window, err := time.ParseDuration(cfg.FixedWindow.Window)
		if err != nil {
			window = time.Minute
		}
		limiter = ratelimiter.NewFixedWindow(cfg.FixedWindow.Limit, window)
	default:
		return nil
	}

	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// CircuitBreakerMiddleware 用熔断器包装下游处理链：连续 5xx 达到阈值后
// 直接快速失败，超时后半开放行探测请求。
func CircuitBreakerMiddleware(cfg config.CircuitBreakerConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return nil
	}

	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil {
		timeout = 30 * time.Second
	}
	cb := circuitbreaker.New(cfg.FailureThreshold, cfg.SuccessThreshold, timeout)

	return func(c *gin.Context) {
		_, err := cb.Execute(func() (interface{}, error) {
			c.Next()
			if c.Writer.Status() >= http.StatusInternalServerError {
				return nil, errUpstream
			}
			return nil, nil
		})
		if err == circuitbreaker.ErrCircuitOpen {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service temporarily unavailable"})
			c.Abort()
		}
	}
}

var errUpstream = &statusError{}

type statusError struct{}

func (e *statusError) Error() string { return "upstream handler returned a server error" }
