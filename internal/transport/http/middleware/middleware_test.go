package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/smarts8855/online-shop/internal/core/auth"
	"github.com/smarts8855/online-shop/internal/domain"
)

type userMap map[string]*domain.User

func (m userMap) FindByID(_ context.Context, id string) (*domain.User, error) {
	return m[id], nil
}

func serve(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestGuards(t *testing.T) {
	gin.SetMode(gin.TestMode)
	j := &auth.JWTer{Secret: []byte("k"), Issuer: "shop", TTL: time.Hour}
	other := &auth.JWTer{Secret: []byte("other"), Issuer: "shop", TTL: time.Hour}
	users := userMap{
		"u-1": {ID: "u-1", Role: domain.RoleUser},
		"a-1": {ID: "a-1", Role: domain.RoleAdmin},
	}
	g := NewGuards(j, users)

	r := gin.New()
	r.GET("/me", g.Auth, func(c *gin.Context) { c.String(http.StatusOK, UserID(c)) })
	r.GET("/admin", g.Admin, func(c *gin.Context) { c.String(http.StatusOK, CurrentUser(c).ID) })

	tok := func(j *auth.JWTer, uid string) string {
		s, err := j.Issue(uid)
		require.NoError(t, err)
		return s
	}

	tests := []struct {
		name  string
		path  string
		token string
		code  int
		body  string
	}{
		{"no header", "/me", "", 401, "missing token"},
		{"garbage token", "/me", "abc.def", 401, "Invalid/Expired token, please login again"},
		{"foreign signature", "/me", tok(other, "u-1"), 401, "Invalid/Expired token, please login again"},
		{"user ok", "/me", tok(j, "u-1"), 200, "u-1"},
		{"user on admin route", "/admin", tok(j, "u-1"), 403, "Access Denied, Admin Only"},
		{"unknown subject on admin route", "/admin", tok(j, "ghost"), 401, "Invalid/Expired token, please login again"},
		{"admin ok", "/admin", tok(j, "a-1"), 200, "a-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, http.MethodGet, tt.path, tt.token)
			assert.Equal(t, tt.code, w.Code)
			assert.Contains(t, w.Body.String(), tt.body)
		})
	}
}

func TestRateLimitPerIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/login", RateLimitPerIP(0.001, 2), func(c *gin.Context) { c.Status(http.StatusOK) })

	hit := func(ip string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = ip + ":1234"
		r.ServeHTTP(w, req)
		return w.Code
	}
	assert.Equal(t, 200, hit("10.0.0.1"))
	assert.Equal(t, 200, hit("10.0.0.1"))
	assert.Equal(t, 429, hit("10.0.0.1"))
	assert.Equal(t, 200, hit("10.0.0.2"), "buckets are per client")
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery(zap.NewNop()))
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	w := serve(r, http.MethodGet, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"code":500,"msg":"internal error","data":{}}`, w.Body.String())
}

func TestAccessLogMasksSecrets(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.InfoLevel)
	r := gin.New()
	r.Use(RequestID(), AccessLog(zap.New(core)))
	r.GET("/items", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := serve(r, http.MethodGet, "/items?token=abc&q=phone", "")
	assert.NotEmpty(t, w.Header().Get(KeyRequestID))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "/items", fields["path"])
	assert.EqualValues(t, http.StatusNoContent, fields["status"])
	q := fields["query"].(map[string][]string)
	assert.Equal(t, []string{"****"}, q["token"])
	assert.Equal(t, []string{"phone"}, q["q"])
}

func TestTimeout(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/slow", Timeout(10*time.Millisecond), func(c *gin.Context) {
		<-c.Request.Context().Done()
	})
	w := serve(r, http.MethodGet, "/slow", "")
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/rid", func(c *gin.Context) { c.String(http.StatusOK, RequestIDOf(c)) })

	cases := []struct {
		name string
		in   string
		keep bool
	}{
		{"passthrough", "req-123_abc.1", true},
		{"missing", "", false},
		{"unsafe chars", "bad id\n", false},
		{"too long", string(make([]byte, maxRequestIDLen+1)), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/rid", nil)
			if tc.in != "" {
				req.Header.Set(KeyRequestID, tc.in)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			got := w.Header().Get(KeyRequestID)
			assert.Equal(t, got, w.Body.String())
			if tc.keep {
				assert.Equal(t, tc.in, got)
			} else {
				assert.NotEqual(t, tc.in, got)
				assert.NotEmpty(t, got)
			}
		})
	}
}

func TestConcurrencyLimitRejectsWhenFull(t *testing.T) {
	gin.SetMode(gin.TestMode)
	entered, release := make(chan struct{}), make(chan struct{})
	r := gin.New()
	r.Use(ConcurrencyLimit(1, 0))
	r.GET("/work", func(c *gin.Context) {
		entered <- struct{}{}
		<-release
		c.Status(http.StatusNoContent)
	})

	done := make(chan int)
	go func() { done <- serve(r, http.MethodGet, "/work", "").Code }()
	<-entered

	w := serve(r, http.MethodGet, "/work", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"code":503,"msg":"server busy","data":{}}`, w.Body.String())

	close(release)
	assert.Equal(t, http.StatusNoContent, <-done)
}

func TestMetricsLabelsUnmatchedRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics("metrics-test"))
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, http.MethodGet, "/items/42", "")
	serve(r, http.MethodGet, "/nope/1", "")
	serve(r, http.MethodGet, "/nope/2", "")

	assert.Equal(t, 1.0, testutil.ToFloat64(httpReqTotal.WithLabelValues("metrics-test", "/items/:id", http.MethodGet, "200")))
	assert.Equal(t, 2.0, testutil.ToFloat64(httpReqTotal.WithLabelValues("metrics-test", unmatchedRoute, http.MethodGet, "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(httpInFlight.WithLabelValues("metrics-test")))
}

func TestRateLimitSetsRetryAfter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(0.5, 1))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/x", "").Code)
	w := serve(r, http.MethodGet, "/x", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "3", w.Header().Get("Retry-After"))
}
