// Package response 统一 Web 接口的 JSON 响应格式：{"success": bool, ...}
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Success 返回 200，data 中的键与 success 平铺在同一层
func Success(c *gin.Context, data gin.H) {
	body := gin.H{"success": true}
	for k, v := range data {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

// ErrorWithStatus 返回指定状态码的错误响应，detail 为空时省略
func ErrorWithStatus(c *gin.Context, status int, msg string, detail string) {
	body := gin.H{"success": false, "error": msg}
	if detail != "" {
		body["detail"] = detail
	}
	c.AbortWithStatusJSON(status, body)
}
