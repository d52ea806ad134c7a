// internal/handlers/passwordreset/reset_handler.go
package passwordreset

import (
	"net/http"

	"authcore-service/internal/domain/identity"
	"authcore-service/internal/pkg/response"
	resetservice "authcore-service/internal/service/passwordreset"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// The request endpoint answers identically for known and unknown accounts;
// the only observable difference is whether mail arrives.
const genericResetMessage = "if the account exists, a reset link has been sent"

type ResetHandler struct {
	resetService *resetservice.Service
	logger       *zap.Logger
}

func NewResetHandler(svc *resetservice.Service, logger *zap.Logger) *ResetHandler {
	return &ResetHandler{
		resetService: svc,
		logger:       logger,
	}
}

// Request handles POST /password-reset/request
func (h *ResetHandler) Request(c *gin.Context) {
	var req identity.ResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid reset payload", err)
		return
	}

	if err := h.resetService.Request(c.Request.Context(), req.Email, c.ClientIP()); err != nil {
		// Infrastructure failure only; input-shaped outcomes never error.
		h.logger.Error("reset request failed", zap.Error(err))
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, genericResetMessage, nil)
}

// Validate handles GET /password-reset/validate?token=...
func (h *ResetHandler) Validate(c *gin.Context) {
	tokenParam := c.Query("token")
	if tokenParam == "" {
		response.ValidationError(c, "missing token", nil)
		return
	}

	preview, err := h.resetService.Validate(c.Request.Context(), tokenParam)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "token valid", preview)
}

// Confirm handles POST /password-reset/confirm
func (h *ResetHandler) Confirm(c *gin.Context) {
	var req identity.ResetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid reset payload", err)
		return
	}

	if err := h.resetService.Consume(c.Request.Context(), req.Token, req.NewPassword, c.ClientIP()); err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "password updated", nil)
}
