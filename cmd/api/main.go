package main

import (
	"context"
	"os"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
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

	// 金额以数字而非字符串输出
	decimal.MarshalJSONWithoutQuotes = true

	a, err := app.New(cfg, log)
	if err != nil {
		log.Fatal("bootstrap failed", zap.Error(err))
	}
	defer func() { _ = a.Close() }()

	// 路由（用户端）
	r := router.NewAPIEngine(log, cfg, a.APIRegistry())

	// HTTP Server
	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	// 启动日志
	baseURL := server.BaseURL(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	log.Info("user api",
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("api", baseURL+cfg.App.APIPrefix),
		zap.String("uploads", cfg.Upload.PublicBaseURL),
	)

	if err := server.Serve(context.Background(), srv, log, "user api"); err != nil {
		log.Error("user api stopped", zap.Error(err))
	}
}
