package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/smarts8855/online-shop/internal/domain"
	"github.com/smarts8855/online-shop/internal/service"
	httpez "github.com/smarts8855/online-shop/internal/transport/http/ez"
)

// AdminHandler 管理端接口；分组已经挂了 Admin 守卫，这里不再重复校验
type AdminHandler struct {
	users          *service.UserService
	catalog        *service.CatalogService
	orders         *service.OrderService
	reconcileAfter time.Duration
	log            *zap.Logger
}

func NewAdminHandler(users *service.UserService, catalog *service.CatalogService, orders *service.OrderService, reconcileAfter time.Duration, l *zap.Logger) *AdminHandler {
	return &AdminHandler{users: users, catalog: catalog, orders: orders, reconcileAfter: reconcileAfter, log: l}
}

type Stats struct {
	Users      int64           `json:"users"`
	Products   int64           `json:"products"`
	Orders     int64           `json:"orders"`
	TotalSales decimal.Decimal `json:"totalSales"`
}

type roleIn struct {
	Role string `json:"role" binding:"required,oneof=user admin"`
}

type reconcileIn struct {
	// OlderThanMin 为 0 时使用配置 app.admin.reconcileAfterMin
	OlderThanMin int `form:"olderThanMin" binding:"gte=0"`
}

type reconcileOut struct {
	Purged int64 `json:"purged"`
}

func (h *AdminHandler) Priority() int { return 0 }

func (h *AdminHandler) MountAdmin(admin *gin.RouterGroup) {
	e := httpez.New(admin, h.log)

	// --- GET /admin/v1/stats  概览 ---
	httpez.RegisterAction(e, httpez.Action[struct{}, Stats]{
		Method: http.MethodGet,
		Path:   "/stats",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (Stats, error) {
			return h.Stats(c)
		},
	})

	// --- GET /admin/v1/users  用户列表 ---
	httpez.RegisterAction(e, httpez.Action[struct{}, []domain.User]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.User, error) {
			return h.users.List(c.Request.Context())
		},
	})

	// --- PUT /admin/v1/users/:id/role  授予/撤销管理员 ---
	httpez.RegisterAction(e, httpez.Action[roleIn, *domain.User]{
		Method: http.MethodPut,
		Path:   "/users/:id/role",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *roleIn) (*domain.User, error) {
			return h.users.SetRole(c.Request.Context(), c.Param("id"), in.Role)
		},
	})

	// --- GET /admin/v1/orders  全部订单 ---
	httpez.RegisterAction(e, httpez.Action[struct{}, []domain.Order]{
		Method: http.MethodGet,
		Path:   "/orders",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Order, error) {
			return h.orders.ListAll(c.Request.Context())
		},
	})

	// --- POST /admin/v1/orders/reconcile  清理下单失败遗留的 order item ---
	httpez.RegisterAction(e, httpez.Action[reconcileIn, reconcileOut]{
		Method: http.MethodPost,
		Path:   "/orders/reconcile",
		Binder: httpez.BindQuery,
		Handler: func(c *gin.Context, in *reconcileIn) (reconcileOut, error) {
			after := h.reconcileAfter
			if in.OlderThanMin > 0 {
				after = time.Duration(in.OlderThanMin) * time.Minute
			}
			n, err := h.orders.PurgeOrphanItems(c.Request.Context(), after)
			if err != nil {
				return reconcileOut{}, err
			}
			return reconcileOut{Purged: n}, nil
		},
	})
}

func (h *AdminHandler) Stats(c *gin.Context) (Stats, error) {
	ctx := c.Request.Context()
	var s Stats
	var err error
	if s.Users, err = h.users.Count(ctx); err != nil {
		return Stats{}, err
	}
	if s.Products, err = h.catalog.CountProducts(ctx); err != nil {
		return Stats{}, err
	}
	if s.Orders, err = h.orders.Count(ctx); err != nil {
		return Stats{}, err
	}
	if s.TotalSales, err = h.orders.TotalSales(ctx); err != nil {
		return Stats{}, err
	}
	return s, nil
}
