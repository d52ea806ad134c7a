// internal/handlers/auth/auth_handler.go
package auth

import (
	"net/http"

	"authcore-service/internal/domain/identity"
	"authcore-service/internal/middleware"
	"authcore-service/internal/pkg/response"
	authservice "authcore-service/internal/service/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *authservice.Service
	logger      *zap.Logger
}

func NewAuthHandler(svc *authservice.Service, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: svc,
		logger:      logger,
	}
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req identity.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid login payload", err)
		return
	}
	req.IPAddress = c.ClientIP()
	req.UserAgent = c.Request.UserAgent()

	resp, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "login successful", resp)
}

// Refresh handles POST /auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req identity.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid refresh payload", err)
		return
	}

	resp, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "token refreshed", resp)
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	p, ok := middleware.MustGetPrincipal(c)
	if !ok {
		return
	}

	if err := h.authService.Logout(c.Request.Context(), p); err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "logged out", nil)
}

// LogoutAll handles POST /auth/logout-all
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	p, ok := middleware.MustGetPrincipal(c)
	if !ok {
		return
	}

	n, err := h.authService.LogoutAll(c.Request.Context(), p)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "logged out everywhere", gin.H{
		"terminated_sessions": n,
	})
}

// Me handles GET /auth/validate
func (h *AuthHandler) Me(c *gin.Context) {
	p, ok := middleware.MustGetPrincipal(c)
	if !ok {
		return
	}

	response.Success(c, http.StatusOK, "authenticated", p)
}

// GetActiveSessions handles GET /auth/sessions
func (h *AuthHandler) GetActiveSessions(c *gin.Context) {
	p, ok := middleware.MustGetPrincipal(c)
	if !ok {
		return
	}

	sessions, err := h.authService.ListSessions(c.Request.Context(), p)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "active sessions", sessions)
}

// RevokeSession handles DELETE /auth/sessions/:session_id
func (h *AuthHandler) RevokeSession(c *gin.Context) {
	p, ok := middleware.MustGetPrincipal(c)
	if !ok {
		return
	}

	sessionID := c.Param("session_id")
	if sessionID == "" {
		response.ValidationError(c, "missing session id", nil)
		return
	}

	if err := h.authService.TerminateSession(c.Request.Context(), p, sessionID); err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "session revoked", nil)
}

// SessionStats handles GET /admin/auth/stats
func (h *AuthHandler) SessionStats(c *gin.Context) {
	stats, err := h.authService.SessionStats(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "session stats", stats)
}
