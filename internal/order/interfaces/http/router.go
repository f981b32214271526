package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/futurestrading/pkg/config"
	"github.com/wyfcoding/futurestrading/pkg/metrics"
	"github.com/wyfcoding/futurestrading/pkg/middleware"
	"github.com/wyfcoding/futurestrading/pkg/ratelimit"
)

// RouterOptions 路由构建参数
type RouterOptions struct {
	ServiceName string
	Metrics     *metrics.Metrics
	MetricsPath string
	Limiter     ratelimit.RateLimiter
	RateLimit   config.RateLimitConfig
}

// NewRouter 创建挂载中间件、业务路由、健康检查与指标端点的 gin 引擎
func NewRouter(h *OrderHandler, opts RouterOptions) *gin.Engine {
	router := gin.New()

	router.Use(middleware.GinLoggingMiddleware(opts.Metrics))
	router.Use(middleware.GinRecoveryMiddleware())
	router.Use(middleware.GinCORSMiddleware())
	metricsPath := opts.MetricsPath
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	if opts.Limiter != nil {
		router.Use(middleware.RateLimitMiddleware(opts.Limiter, opts.RateLimit, "/health", metricsPath))
	}

	h.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": opts.ServiceName,
		})
	})

	if opts.Metrics != nil {
		router.GET(metricsPath, gin.WrapH(opts.Metrics.Handler()))
	}

	return router
}
