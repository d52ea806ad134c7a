// internal/handlers/admin/ratelimit_handler.go
package admin

import (
	"net/http"

	"authcore-service/internal/pkg/ratelimit"
	"authcore-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimitHandler is the operator surface over the limiter: inspect busy
// keys and manually unblock a legitimate client caught by the window.
type RateLimitHandler struct {
	limiter *ratelimit.Limiter
	logger  *zap.Logger
}

func NewRateLimitHandler(limiter *ratelimit.Limiter, logger *zap.Logger) *RateLimitHandler {
	return &RateLimitHandler{
		limiter: limiter,
		logger:  logger,
	}
}

// ListActive handles GET /admin/rate-limits
func (h *RateLimitHandler) ListActive(c *gin.Context) {
	keys, err := h.limiter.ListActive(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "active rate limit keys", keys)
}

// Stats handles GET /admin/rate-limits/stats
func (h *RateLimitHandler) Stats(c *gin.Context) {
	stats, err := h.limiter.Stats(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "rate limit stats", stats)
}

// Reset handles DELETE /admin/rate-limits/:key
func (h *RateLimitHandler) Reset(c *gin.Context) {
	key := c.Param("key")
	if key == "" {
		response.ValidationError(c, "missing key", nil)
		return
	}

	existed, err := h.limiter.Reset(c.Request.Context(), key)
	if err != nil {
		response.FromError(c, err)
		return
	}

	h.logger.Info("rate limit key reset", zap.String("key", key), zap.Bool("existed", existed))
	response.Success(c, http.StatusOK, "rate limit reset", gin.H{"existed": existed})
}
