package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/smarts8855/online-shop/internal/core/auth"
	"github.com/smarts8855/online-shop/internal/core/cache"
	"github.com/smarts8855/online-shop/internal/core/config"
	"github.com/smarts8855/online-shop/internal/core/database"
	"github.com/smarts8855/online-shop/internal/core/storage"
	"github.com/smarts8855/online-shop/internal/feature/catalog"
	"github.com/smarts8855/online-shop/internal/feature/order"
	"github.com/smarts8855/online-shop/internal/feature/user"
	"github.com/smarts8855/online-shop/internal/repo"
	"github.com/smarts8855/online-shop/internal/service"
	"github.com/smarts8855/online-shop/internal/transport/http/handler"
	mdw "github.com/smarts8855/online-shop/internal/transport/http/middleware"
	"github.com/smarts8855/online-shop/internal/transport/http/router"
)

// App 持有两个进程共用的依赖：DB、缓存、存储和各 service
type App struct {
	Cfg    *config.Config
	Log    *zap.Logger
	DB     *gorm.DB
	Cache  *cache.Cache
	JWT    *auth.JWTer
	Guards mdw.Guards

	Users   *service.UserService
	Catalog *service.CatalogService
	Orders  *service.OrderService
}

// New 打开数据库并组装依赖；调用方负责 Close
func New(cfg *config.Config, l *zap.Logger) (*App, error) {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	l.Info("database connected", zap.String("driver", cfg.DB.Driver))
	if cfg.DB.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			_ = database.Close(db)
			return nil, fmt.Errorf("automigrate: %w", err)
		}
		l.Info("automigrate done")
	}

	files, err := storage.NewLocal(cfg.Upload.Dir, cfg.Upload.PublicBaseURL, int64(cfg.Upload.MaxFileMB)<<20)
	if err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("upload dir: %w", err)
	}

	c := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, time.Duration(cfg.Redis.TTLSec)*time.Second)
	if c != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := c.RDB.Ping(ctx).Err(); err != nil {
			l.Warn("redis unreachable, reads go to the database", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		cancel()
	}

	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
	}
	users := repo.NewUserRepo(db)
	products := repo.NewProductRepo(db)

	return &App{
		Cfg:     cfg,
		Log:     l,
		DB:      db,
		Cache:   c,
		JWT:     jwter,
		Guards:  mdw.NewGuards(jwter, users),
		Users:   service.NewUserService(users, jwter, l),
		Catalog: service.NewCatalogService(repo.NewCategoryRepo(db), products, files, c, l),
		Orders: service.NewOrderService(repo.NewOrderRepo(db), products, repo.NewTransactor(db), service.OrderOptions{
			Transactional: cfg.Order.Transactional,
			DefaultStatus: cfg.Order.DefaultStatus,
		}, l),
	}, nil
}

// APIRegistry 用户端路由模块
func (a *App) APIRegistry() *router.Registry {
	loginLimit := mdw.RateLimitPerIP(rate.Limit(a.Cfg.Limits.LoginRPS), a.Cfg.Limits.LoginBurst)
	return router.NewRegistry(
		user.New(a.Users, a.Guards, loginLimit, a.Log),
		catalog.New(a.Catalog, a.Guards, a.Cfg.Upload.MaxGallery, a.Log),
		order.New(a.Orders, a.Guards, a.Log),
	)
}

// AdminRegistry 管理端路由模块
func (a *App) AdminRegistry() *router.Registry {
	return router.NewRegistry(
		handler.NewAdminHandler(a.Users, a.Catalog, a.Orders, a.ReconcileAfter(), a.Log),
	)
}

func (a *App) ReconcileAfter() time.Duration {
	return time.Duration(a.Cfg.App.Admin.ReconcileAfterMin) * time.Minute
}

func (a *App) Close() error {
	_ = a.Cache.Close()
	return database.Close(a.DB)
}
