package api

import (
	"MeetMind/internal/config"

	"github.com/gin-gonic/gin"
)

// SetupRouter 配置和返回一个 Gin 引擎实例。
func SetupRouter(h *Handler, hub *ProgressHub, mw config.MiddlewareConfig) *gin.Engine {
	// 使用默认中间件 (logger, recovery) 创建一个 Gin 引擎。
	r := gin.Default()
	r.Use(TraceIDMiddleware())

	if limiter := RateLimitMiddleware(mw.RateLimiter); limiter != nil {
		r.Use(limiter)
	}
	if breaker := CircuitBreakerMiddleware(mw.CircuitBreaker); breaker != nil {
		r.Use(breaker)
	}

	r.GET("/healthz", h.Healthz)
	if hub != nil {
		r.GET("/ws/progress", hub.HandleWS)
	}

	// 使用 v1 版本对 API 进行分组
	apiV1 := r.Group("/api/v1")
	{
		apiV1.POST("/meetings", h.IngestMeeting)
		apiV1.POST("/query", h.Query)
		apiV1.GET("/chunks/:id", h.GetChunk)
		apiV1.GET("/meetings/:id/threads", h.OpenThreads)
		apiV1.GET("/experts", h.Experts)
	}

	return r
}
