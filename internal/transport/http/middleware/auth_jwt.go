package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/smarts8855/online-shop/internal/domain"
	resp "github.com/smarts8855/online-shop/internal/transport/http/response"
)

const (
	KeyUserID = "userId"
	KeyUser   = "user"

	msgMissingToken = "missing token"
	msgBadToken     = "Invalid/Expired token, please login again"
	msgAdminOnly    = "Access Denied, Admin Only"
)

type TokenVerifier interface {
	Verify(token string) (string, error)
}

type UserFinder interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// AuthJWT 校验 Bearer token；requireRole 非空时再加载用户并校验角色
func AuthJWT(j TokenVerifier, users UserFinder, requireRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			resp.Abort(c, resp.CodeUnauthorized, msgMissingToken)
			return
		}
		uid, err := j.Verify(strings.TrimSpace(strings.TrimPrefix(ah, "Bearer ")))
		if err != nil {
			resp.Abort(c, resp.CodeUnauthorized, msgBadToken)
			return
		}
		c.Set(KeyUserID, uid)
		if requireRole == "" {
			c.Next()
			return
		}

		u, err := users.FindByID(c.Request.Context(), uid)
		if err != nil {
			_ = c.Error(err)
			resp.Abort(c, resp.CodeServerError, "internal error")
			return
		}
		if u == nil {
			resp.Abort(c, resp.CodeUnauthorized, msgBadToken)
			return
		}
		if u.Role != requireRole {
			resp.Abort(c, resp.CodeForbidden, msgAdminOnly)
			return
		}
		c.Set(KeyUser, u)
		c.Next()
	}
}

// Guards 是路由模块使用的两档鉴权
type Guards struct {
	Auth  gin.HandlerFunc
	Admin gin.HandlerFunc
}

func NewGuards(j TokenVerifier, users UserFinder) Guards {
	return Guards{
		Auth:  AuthJWT(j, users, ""),
		Admin: AuthJWT(j, users, domain.RoleAdmin),
	}
}

func UserID(c *gin.Context) string { return c.GetString(KeyUserID) }

// CurrentUser 仅在 Admin 守卫之后可用
func CurrentUser(c *gin.Context) *domain.User {
	if v, ok := c.Get(KeyUser); ok {
		u, _ := v.(*domain.User)
		return u
	}
	return nil
}
