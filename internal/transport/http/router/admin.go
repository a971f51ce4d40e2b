package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/smarts8855/online-shop/internal/core/config"
	"github.com/smarts8855/online-shop/internal/core/server"
	mdw "github.com/smarts8855/online-shop/internal/transport/http/middleware"
)

const AdminPrefix = "/admin/v1"

func NewAdminEngine(l *zap.Logger, cfg *config.Config, guards mdw.Guards, reg *Registry) *gin.Engine {
	r := server.NewRouter(l, cfg.App.Env)
	r.Use(chain(l, cfg.Limits, "admin")...)

	r.GET("/health", health)
	r.GET("/metrics", mdw.MetricsHandler())

	// 管理端 v1（统一要求 admin 角色）
	admin := r.Group(AdminPrefix)
	admin.Use(guards.Admin)
	reg.MountAllAdmin(admin)
	return r
}
