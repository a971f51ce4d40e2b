package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 未命中路由统一记为 unmatched，避免任意 URL 撑爆 label 基数
const unmatchedRoute = "unmatched"

var (
	httpReqTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "shop_http_requests_total", Help: "HTTP requests by engine, route and status"},
		[]string{"engine", "route", "method", "status"},
	)
	httpLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shop_http_request_duration_seconds",
			Help:    "HTTP request latency by engine and route",
			Buckets: prometheus.DefBuckets,
		}, []string{"engine", "route", "method"},
	)
	httpInFlight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "shop_http_requests_in_flight", Help: "Requests currently being served"},
		[]string{"engine"},
	)
)

func init() { prometheus.MustRegister(httpReqTotal, httpLatency, httpInFlight) }

// Metrics 记录请求数、耗时和并发中的请求；engine 区分 api / admin
func Metrics(engine string) gin.HandlerFunc {
	inflight := httpInFlight.WithLabelValues(engine)
	return func(c *gin.Context) {
		start := time.Now()
		inflight.Inc()
		defer inflight.Dec()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		method := c.Request.Method
		httpReqTotal.WithLabelValues(engine, route, method, strconv.Itoa(c.Writer.Status())).Inc()
		httpLatency.WithLabelValues(engine, route, method).Observe(time.Since(start).Seconds())
	}
}

// MetricsHandler 暴露默认 registry，包含 HTTP 与下单指标
func MetricsHandler() gin.HandlerFunc { return gin.WrapH(promhttp.Handler()) }
