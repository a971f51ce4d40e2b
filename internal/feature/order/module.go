package order

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/smarts8855/online-shop/internal/domain"
	"github.com/smarts8855/online-shop/internal/service"
	httpez "github.com/smarts8855/online-shop/internal/transport/http/ez"
	mdw "github.com/smarts8855/online-shop/internal/transport/http/middleware"
)

// Module mounts /orders. Checkout and the caller's history need a login,
// everything else is admin only.
type Module struct {
	svc    *service.OrderService
	guards mdw.Guards
	log    *zap.Logger
}

func New(svc *service.OrderService, guards mdw.Guards, l *zap.Logger) *Module {
	return &Module{svc: svc, guards: guards, log: l}
}

func (m *Module) Priority() int { return 20 }

type statusIn struct {
	Status string `json:"status" binding:"required,max=32"`
}

func (m *Module) MountAPI(api *gin.RouterGroup) {
	e := httpez.New(api.Group("/orders"), m.log)
	auth := []gin.HandlerFunc{m.guards.Auth}
	admin := []gin.HandlerFunc{m.guards.Admin}

	httpez.RegisterAction(e, httpez.Action[service.CreateOrderInput, *domain.Order]{
		Method: http.MethodPost,
		Path:   "",
		Binder: httpez.BindJSON,
		Guards: auth,
		Handler: func(c *gin.Context, in *service.CreateOrderInput) (*domain.Order, error) {
			return m.svc.Create(c.Request.Context(), mdw.UserID(c), *in)
		},
	})

	httpez.RegisterAction(e, httpez.Action[struct{}, []domain.Order]{
		Method: http.MethodGet,
		Path:   "",
		Binder: httpez.BindNone,
		Guards: admin,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Order, error) {
			return m.svc.ListAll(c.Request.Context())
		},
	})

	mine := httpez.Action[struct{}, []domain.Order]{
		Method: http.MethodGet,
		Path:   "/mine",
		Binder: httpez.BindNone,
		Guards: auth,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Order, error) {
			return m.svc.ListForUser(c.Request.Context(), mdw.UserID(c))
		},
	}
	httpez.RegisterAction(e, mine)
	// 老客户端仍在用的路径
	mine.Path = "/single-order"
	httpez.RegisterAction(e, mine)

	httpez.RegisterAction(e, httpez.Action[struct{}, gin.H]{
		Method: http.MethodGet,
		Path:   "/get/count",
		Binder: httpez.BindNone,
		Guards: admin,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			n, err := m.svc.Count(c.Request.Context())
			if err != nil {
				return nil, err
			}
			return gin.H{"orderCount": n}, nil
		},
	})

	httpez.RegisterAction(e, httpez.Action[struct{}, gin.H]{
		Method: http.MethodGet,
		Path:   "/get/totalsales",
		Binder: httpez.BindNone,
		Guards: admin,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			total, err := m.svc.TotalSales(c.Request.Context())
			if err != nil {
				return nil, err
			}
			return gin.H{"totalSales": total}, nil
		},
	})

	httpez.RegisterAction(e, httpez.Action[statusIn, *domain.Order]{
		Method: http.MethodPut,
		Path:   "/:id/status",
		Binder: httpez.BindJSON,
		Guards: admin,
		Handler: func(c *gin.Context, in *statusIn) (*domain.Order, error) {
			return m.svc.UpdateStatus(c.Request.Context(), c.Param("id"), in.Status)
		},
	})
}

