package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/smarts8855/online-shop/internal/domain"
	"github.com/smarts8855/online-shop/internal/service"
	httpez "github.com/smarts8855/online-shop/internal/transport/http/ez"
	mdw "github.com/smarts8855/online-shop/internal/transport/http/middleware"
)

// Module mounts /users.
type Module struct {
	svc        *service.UserService
	guards     mdw.Guards
	loginLimit gin.HandlerFunc
	log        *zap.Logger
}

// New takes the per-IP limiter that protects /users/login; nil disables it.
func New(svc *service.UserService, guards mdw.Guards, loginLimit gin.HandlerFunc, l *zap.Logger) *Module {
	return &Module{svc: svc, guards: guards, loginLimit: loginLimit, log: l}
}

func (m *Module) Priority() int { return 0 }

type loginIn struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (m *Module) MountAPI(api *gin.RouterGroup) {
	e := httpez.New(api.Group("/users"), m.log)

	httpez.RegisterAction(e, httpez.Action[service.RegisterInput, *domain.User]{
		Method: http.MethodPost,
		Path:   "/register",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *service.RegisterInput) (*domain.User, error) {
			return m.svc.Register(c.Request.Context(), *in)
		},
	})

	var loginGuards []gin.HandlerFunc
	if m.loginLimit != nil {
		loginGuards = append(loginGuards, m.loginLimit)
	}
	httpez.RegisterAction(e, httpez.Action[loginIn, *service.LoginResult]{
		Method: http.MethodPost,
		Path:   "/login",
		Binder: httpez.BindJSON,
		Guards: loginGuards,
		Handler: func(c *gin.Context, in *loginIn) (*service.LoginResult, error) {
			return m.svc.Login(c.Request.Context(), in.Email, in.Password)
		},
	})

	httpez.RegisterAction(e, httpez.Action[struct{}, []domain.User]{
		Method: http.MethodGet,
		Path:   "",
		Binder: httpez.BindNone,
		Guards: []gin.HandlerFunc{m.guards.Admin},
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.User, error) {
			return m.svc.List(c.Request.Context())
		},
	})

	httpez.RegisterAction(e, httpez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/profile",
		Binder: httpez.BindNone,
		Guards: []gin.HandlerFunc{m.guards.Auth},
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			return m.svc.Profile(c.Request.Context(), mdw.UserID(c))
		},
	})
}
