package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/smarts8855/online-shop/pkg/utils"
)

const KeyRequestID = "X-Request-ID"

const maxRequestIDLen = 64

// RequestID 透传客户端的 X-Request-ID；缺失或不合法时重新生成
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.Request.Header.Get(KeyRequestID)
		if !validRequestID(rid) {
			rid = utils.NewID()
		}
		c.Writer.Header().Set(KeyRequestID, rid)
		c.Set(KeyRequestID, rid)
		c.Next()
	}
}

func RequestIDOf(c *gin.Context) string { return c.GetString(KeyRequestID) }

// 只接受可安全写入日志和响应头的字符
func validRequestID(s string) bool {
	if s == "" || len(s) > maxRequestIDLen {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.', r == ':':
		default:
			return false
		}
	}
	return true
}
