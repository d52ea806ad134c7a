// internal/app/router.go
package app

import (
	adminHandler "authcore-service/internal/handlers/admin"
	authHandler "authcore-service/internal/handlers/auth"
	resetHandler "authcore-service/internal/handlers/passwordreset"
	"authcore-service/internal/middleware"
	"authcore-service/internal/pkg/ratelimit"
	authUsecase "authcore-service/internal/service/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handlers struct {
	AuthHandler      *authHandler.AuthHandler
	ResetHandler     *resetHandler.ResetHandler
	RateLimitHandler *adminHandler.RateLimitHandler
}

func SetupRouter(
	r *gin.Engine,
	logger *zap.Logger,
	limits ratelimit.Classes,
	limiter *ratelimit.Limiter,
	authService *authUsecase.Service,
	h *Handlers,
) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": "1.0.0"})
	})

	authLimit := middleware.RateLimit(limiter, limits.Auth, middleware.KeyByClientIPUserAgent, logger)
	resetLimit := middleware.RateLimit(limiter, limits.PasswordReset, middleware.KeyByClientIPUserAgent, logger)
	apiLimit := middleware.RateLimit(limiter, limits.API, middleware.KeyByPrincipal, logger)
	authenticate := middleware.Authenticate(authService)

	// ==================== Public Auth Routes ====================
	authPublic := api.Group("/auth")
	{
		authPublic.POST("/login", authLimit, h.AuthHandler.Login)
		authPublic.POST("/refresh", authLimit, h.AuthHandler.Refresh)
	}

	// ==================== Password Reset ====================
	reset := api.Group("/password-reset")
	reset.Use(resetLimit)
	{
		reset.POST("/request", h.ResetHandler.Request)
		reset.GET("/validate", h.ResetHandler.Validate)
		reset.POST("/confirm", h.ResetHandler.Confirm)
	}

	// ==================== Authenticated Auth Routes ====================
	authProtected := api.Group("/auth")
	authProtected.Use(authenticate, apiLimit)
	{
		authProtected.POST("/logout", h.AuthHandler.Logout)
		authProtected.POST("/logout-all", h.AuthHandler.LogoutAll)
		authProtected.GET("/validate", h.AuthHandler.Me)
		authProtected.GET("/sessions", h.AuthHandler.GetActiveSessions)
		authProtected.DELETE("/sessions/:session_id", h.AuthHandler.RevokeSession)
	}

	// ==================== Admin Routes ====================
	admin := api.Group("/admin")
	admin.Use(authenticate, middleware.RequireRole("admin"))
	{
		admin.GET("/auth/stats", h.AuthHandler.SessionStats)

		rateLimits := admin.Group("/rate-limits")
		{
			rateLimits.GET("", h.RateLimitHandler.ListActive)
			rateLimits.GET("/stats", h.RateLimitHandler.Stats)
			rateLimits.DELETE("/:key", h.RateLimitHandler.Reset)
		}
	}
}
