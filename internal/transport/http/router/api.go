package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/smarts8855/online-shop/internal/core/config"
	"github.com/smarts8855/online-shop/internal/core/server"
	mdw "github.com/smarts8855/online-shop/internal/transport/http/middleware"
)

// UploadsPath 与 config 推导的 upload.publicBaseURL 保持一致
const UploadsPath = "/public/uploads"

// chain 两个引擎共用的中间件顺序
func chain(l *zap.Logger, lim config.Limits, engine string) []gin.HandlerFunc {
	return []gin.HandlerFunc{
		mdw.RequestID(),
		mdw.RateLimit(rate.Limit(lim.RPS), lim.Burst),
		mdw.ConcurrencyLimit(lim.Concurrency, time.Duration(lim.QueueWaitMs)*time.Millisecond),
		mdw.MaxBodyBytes(lim.MaxBodyMB << 20),
		mdw.Timeout(time.Duration(lim.TimeoutSec) * time.Second),
		mdw.Recovery(l),
		mdw.Metrics(engine),
		mdw.AccessLog(l),
	}
}

func health(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) }

func NewAPIEngine(l *zap.Logger, cfg *config.Config, reg *Registry) *gin.Engine {
	r := server.NewRouter(l, cfg.App.Env)
	r.Use(chain(l, cfg.Limits, "api")...)

	// 健康检查 / 指标 / 上传文件
	r.GET("/health", health)
	r.GET("/metrics", mdw.MetricsHandler())
	r.Static(UploadsPath, cfg.Upload.Dir)

	api := r.Group(cfg.App.APIPrefix)
	reg.MountAllAPI(api)
	return r
}
