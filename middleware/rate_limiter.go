package middleware

import (
	"net/http"
	"sync"
	"time"

	"labcart/config"
	"labcart/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// rateLimiterStore maps client IPs to their token buckets. Entries live for
// the process lifetime; a per-IP limiter is small enough not to evict.
type rateLimiterStore struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

var limiterStore = &rateLimiterStore{
	limiters: make(map[string]*rate.Limiter),
}

func (s *rateLimiterStore) limiterFor(ip string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limiter, ok := s.limiters[ip]; ok {
		return limiter
	}
	perMin := config.AppConfig.MaxRequestsPerMin
	if perMin <= 0 {
		perMin = 100
	}
	limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMin)), perMin)
	s.limiters[ip] = limiter
	return limiter
}

// RateLimitMiddleware throttles each client IP to MAX_REQUESTS_PER_MIN.
func RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := getClientIP(c)
		if !limiterStore.limiterFor(ip).Allow() {
			utils.GetLogger().Warn("rate limit exceeded", zap.String("ip", ip))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "too many requests, try again later",
			})
			return
		}
		c.Next()
	}
}
