package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/futurestrading/pkg/config"
	"github.com/wyfcoding/futurestrading/pkg/logger"
	"github.com/wyfcoding/futurestrading/pkg/ratelimit"
	"github.com/wyfcoding/futurestrading/pkg/response"
)

const rateLimitKeyPrefix = "futures:ratelimit"

// RateLimitMiddleware 按客户端 IP 限流。下单/撤单与只读查询各用一个桶，exempt 中的路径不限流。
// 限流器出错时放行。
func RateLimitMiddleware(limiter ratelimit.RateLimiter, cfg config.RateLimitConfig, exempt ...string) gin.HandlerFunc {
	limit := ratelimit.Limit{
		Rate:   cfg.QPS,
		Period: time.Second,
		Burst:  cfg.Burst,
	}
	skip := make(map[string]struct{}, len(exempt))
	for _, p := range exempt {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.Next()
			return
		}
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := rateLimitKey(c)
		res, err := limiter.Allow(ctx, key, limit)
		if err != nil {
			logger.Warn(ctx, "Rate limiter failed", "key", key, "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit.Burst))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		if res.Allowed {
			c.Next()
			return
		}

		wait := res.RetryAfter.Round(time.Second)
		if wait < time.Second {
			wait = time.Second
		}
		c.Header("Retry-After", strconv.Itoa(int(wait/time.Second)))
		logger.Info(ctx, "Request rate limited", "key", key, "retry_after", wait)
		response.ErrorWithStatus(c, http.StatusTooManyRequests, "Too Many Requests", "retry after "+wait.String())
	}
}

// rateLimitKey 下单与撤单计入 trade 桶，其余请求计入 query 桶
func rateLimitKey(c *gin.Context) string {
	bucket := "query"
	if c.Request.Method == http.MethodPost || c.Request.Method == http.MethodDelete {
		bucket = "trade"
	}
	return rateLimitKeyPrefix + ":" + bucket + ":" + c.ClientIP()
}
