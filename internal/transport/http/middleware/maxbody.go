package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "github.com/smarts8855/online-shop/internal/transport/http/response"
)

// MaxBodyBytes 限制请求体大小；上传接口受 limits.maxBodyMB 约束
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
		if c.Errors.Last() != nil && !c.Writer.Written() {
			resp.Abort(c, resp.CodeBadRequest, "request body too large")
		}
	}
}
