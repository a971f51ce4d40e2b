package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	resp "github.com/smarts8855/online-shop/internal/transport/http/response"
)

// RateLimit 全局令牌桶限速
func RateLimit(rps rate.Limit, burst int) gin.HandlerFunc {
	lim := rate.NewLimiter(rps, burst)
	return func(c *gin.Context) {
		if lim.Allow() {
			c.Next()
			return
		}
		tooMany(c, lim)
	}
}

// 超过 ipIdleTTL 没请求的 IP 桶会被清理
const ipIdleTTL = 10 * time.Minute

type ipBucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// RateLimitPerIP 每 IP 一个令牌桶，登录接口用来挡暴力破解
func RateLimitPerIP(rps rate.Limit, burst int) gin.HandlerFunc {
	var (
		mu        sync.Mutex
		buckets   = make(map[string]*ipBucket)
		lastSweep = time.Now()
	)
	return func(c *gin.Context) {
		now := time.Now()
		ip := c.ClientIP()

		mu.Lock()
		if now.Sub(lastSweep) > ipIdleTTL {
			for k, b := range buckets {
				if now.Sub(b.seen) > ipIdleTTL {
					delete(buckets, k)
				}
			}
			lastSweep = now
		}
		b, ok := buckets[ip]
		if !ok {
			b = &ipBucket{lim: rate.NewLimiter(rps, burst)}
			buckets[ip] = b
		}
		b.seen = now
		mu.Unlock()

		if b.lim.Allow() {
			c.Next()
			return
		}
		tooMany(c, b.lim)
	}
}

func tooMany(c *gin.Context, lim *rate.Limiter) {
	if l := lim.Limit(); l > 0 && l != rate.Inf {
		secs := int(1/float64(l)) + 1
		c.Header("Retry-After", strconv.Itoa(secs))
	}
	resp.Abort(c, resp.CodeTooManyRequests, "too many requests")
}
