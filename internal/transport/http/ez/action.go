package ez

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/smarts8855/online-shop/internal/domain"
	resp "github.com/smarts8855/online-shop/internal/transport/http/response"
)

type EZ struct {
	g   *gin.RouterGroup
	log *zap.Logger
}

func New(g *gin.RouterGroup, l *zap.Logger) EZ {
	if l == nil {
		l = zap.NewNop()
	}
	return EZ{g: g, log: l}
}

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindForm  Binder = "form"  // multipart/form-data 普通字段，文件由 handler 自取
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param 取
)

// AErr 直接携带业务码，handler 里做 HTTP 层校验时用
type AErr struct {
	Code int
	Msg  string
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error   { return &AErr{Code: resp.CodeBadRequest, Msg: msg} }
func Unauthorized(msg string) error { return &AErr{Code: resp.CodeUnauthorized, Msg: msg} }
func Forbidden(msg string) error    { return &AErr{Code: resp.CodeForbidden, Msg: msg} }
func NotFound(msg string) error     { return &AErr{Code: resp.CodeNotFound, Msg: msg} }
func Conflict(msg string) error     { return &AErr{Code: resp.CodeConflict, Msg: msg} }
func Internal(msg string, err error) error {
	return &AErr{Code: resp.CodeServerError, Msg: msg, Err: err}
}

// 动作定义：I 入参，O 出参
type Action[I any, O any] struct {
	Method  string            // "GET" | "POST" | "PUT" | "DELETE"
	Path    string            // 例："/users/login"、"/orders/:id/status"
	Binder  Binder            // 绑定方式
	Guards  []gin.HandlerFunc // 路由级中间件，例如 Guards.Auth / Guards.Admin
	Handler func(c *gin.Context, in *I) (O, error)
}

// RegisterAction 在当前 EZ 下注册动作接口
func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		case BindForm:
			bindErr = c.ShouldBindWith(&in, binding.FormMultipart)
		default: // BindNone
		}
		if bindErr != nil {
			resp.Abort(c, resp.CodeBadRequest, BindMessage(bindErr))
			return
		}

		out, err := a.Handler(c, &in)
		if err != nil {
			code, msg := e.mapError(c, err)
			resp.Abort(c, code, msg)
			return
		}
		resp.Write(c, resp.CodeOK, resp.OK(out))
	}

	handlers := append(append([]gin.HandlerFunc(nil), a.Guards...), h)
	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, handlers...)
	case http.MethodPut:
		e.g.PUT(a.Path, handlers...)
	case http.MethodDelete:
		e.g.DELETE(a.Path, handlers...)
	default: // 默认 POST
		e.g.POST(a.Path, handlers...)
	}
}

// mapError 统一错误映射；未知错误只写日志，不把细节返回给客户端
func (e EZ) mapError(c *gin.Context, err error) (int, string) {
	var ae *AErr
	if errors.As(err, &ae) {
		if ae.Code >= resp.CodeServerError {
			e.log.Error("action failed", zap.String("path", c.FullPath()), zap.Error(err))
		}
		return ae.Code, ae.Error()
	}
	var de *domain.Error
	if errors.As(err, &de) {
		code := CodeOf(de.Kind)
		if code >= resp.CodeServerError {
			e.log.Error("action failed", zap.String("path", c.FullPath()), zap.Error(err))
		}
		if de.Kind == domain.KindInternal {
			return code, "internal error"
		}
		return code, de.Error()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return resp.CodeTimeout, "timeout"
	}
	e.log.Error("action failed", zap.String("path", c.FullPath()), zap.Error(err))
	return resp.CodeServerError, "internal error"
}

// CodeOf 把领域错误类型映射为响应码
func CodeOf(k domain.Kind) int {
	switch k {
	case domain.KindNotFound:
		return resp.CodeNotFound
	case domain.KindConflict:
		return resp.CodeConflict
	case domain.KindInvalidInput:
		return resp.CodeBadRequest
	case domain.KindUnauthorized, domain.KindInvalidCredentials:
		return resp.CodeUnauthorized
	case domain.KindForbidden:
		return resp.CodeForbidden
	}
	return resp.CodeServerError
}

// BindMessage 把 validator 的错误翻译成 "<field> is required" 这类提示
func BindMessage(err error) string {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) || len(ves) == 0 {
		return "invalid request body"
	}
	fe := ves[0]
	field := lowerFirst(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	}
	return field + " is invalid"
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
