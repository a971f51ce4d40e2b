package main

import (
	"context"
	"os"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/smarts8855/online-shop/internal/app"
	"github.com/smarts8855/online-shop/internal/core/config"
	"github.com/smarts8855/online-shop/internal/core/logger"
	"github.com/smarts8855/online-shop/internal/core/server"
	"github.com/smarts8855/online-shop/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.FromConfig(cfg.Log)
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()

	decimal.MarshalJSONWithoutQuotes = true

	a, err := app.New(cfg, log)
	if err != nil {
		log.Fatal("bootstrap failed", zap.Error(err))
	}
	defer func() { _ = a.Close() }()

	seedAdmin(a, cfg.App.Admin, log)

	// 定时清理下单失败遗留的 order item
	if c := scheduleReconcile(a, cfg.App.Admin.ReconcileCron, log); c != nil {
		c.Start()
		defer c.Stop()
	}

	// 路由（后台端）
	r := router.NewAdminEngine(log, cfg, a.Guards, a.AdminRegistry())

	addr := server.Addr(cfg.App.Admin.Host, cfg.App.Admin.Port)
	srv := server.BuildServer(addr, r, 5*time.Second, 10*time.Second, 60*time.Second)

	baseURL := server.BaseURL(cfg.App.Admin.Host, cfg.App.Admin.Port)
	log.Info("admin api",
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("admin_v1", baseURL+router.AdminPrefix),
	)

	if err := server.Serve(context.Background(), srv, log, "admin api"); err != nil {
		log.Error("admin api stopped", zap.Error(err))
	}
}

// seedAdmin 配置了 seedEmail 时创建或提升管理员账号
func seedAdmin(a *app.App, c config.AdminHTTP, log *zap.Logger) {
	if c.SeedEmail == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	u, err := a.Users.EnsureAdmin(ctx, c.SeedEmail, c.SeedPassword, c.SeedName)
	if err != nil {
		log.Error("seed admin failed", zap.String("email", c.SeedEmail), zap.Error(err))
		return
	}
	log.Info("admin account ready", zap.String("user_id", u.ID), zap.String("email", u.Email))
}

func scheduleReconcile(a *app.App, schedule string, log *zap.Logger) *cron.Cron {
	if schedule == "" {
		return nil
	}
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(logger.ToStdLogger(log, zapcore.DebugLevel))))
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := a.Orders.PurgeOrphanItems(ctx, a.ReconcileAfter()); err != nil {
			log.Error("reconcile order items", zap.Error(err))
		}
	})
	if err != nil {
		log.Error("invalid reconcile schedule", zap.String("schedule", schedule), zap.Error(err))
		return nil
	}
	log.Info("order item reconciliation scheduled", zap.String("schedule", schedule))
	return c
}
