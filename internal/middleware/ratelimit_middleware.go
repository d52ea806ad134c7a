// internal/middleware/ratelimit_middleware.go
package middleware

import (
	"fmt"
	"net/http"
	"time"

	"authcore-service/internal/pkg/ratelimit"
	"authcore-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// KeyFunc derives the rate-limit key for a request.
type KeyFunc func(c *gin.Context) string

// KeyByClientIP keys on the client address.
func KeyByClientIP(c *gin.Context) string {
	return ratelimit.KeyByIP(c.ClientIP())
}

// KeyByClientIPUserAgent keys on address plus hashed user agent; used for
// pre-authentication endpoints.
func KeyByClientIPUserAgent(c *gin.Context) string {
	return ratelimit.KeyByIPUserAgent(c.ClientIP(), c.Request.UserAgent())
}

// KeyByPrincipal keys on the authenticated user, falling back to the
// client address when the request carries no identity.
func KeyByPrincipal(c *gin.Context) string {
	if p, ok := GetPrincipal(c); ok {
		return ratelimit.KeyByUser(p.ID, c.ClientIP())
	}
	return ratelimit.KeyByIP(c.ClientIP())
}

// RateLimit admits requests through the limiter under one endpoint-class
// policy. The X-RateLimit-* headers go out on every response, allowed or
// not; a denial additionally carries Retry-After. When the store itself
// fails the request is admitted: availability over strictness.
func RateLimit(limiter *ratelimit.Limiter, cfg ratelimit.Config, keyFn KeyFunc, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFn(c)

		res, err := limiter.Check(c.Request.Context(), key, cfg)
		if err != nil {
			logger.Error("rate limit store unavailable", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", cfg.MaxRequests))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", res.Remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", res.ResetTime.Unix()))
		c.Header("X-RateLimit-Window", cfg.Window.String())

		if !res.Allowed {
			retryAfter := res.RetryAfter(time.Now())
			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			response.Error(c, http.StatusTooManyRequests, "too many requests", nil, gin.H{
				"retry_after": retryAfter,
			})
			return
		}

		c.Next()
	}
}
