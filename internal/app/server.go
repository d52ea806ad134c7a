// internal/app/server.go
package app

import (
	"context"
	"fmt"

	"authcore-service/internal/audit"
	"authcore-service/internal/config"
	"authcore-service/internal/db"
	adminHandler "authcore-service/internal/handlers/admin"
	authHandler "authcore-service/internal/handlers/auth"
	resetHandler "authcore-service/internal/handlers/passwordreset"
	"authcore-service/internal/middleware"
	"authcore-service/internal/pkg/password"
	"authcore-service/internal/pkg/ratelimit"
	"authcore-service/internal/pkg/token"
	"authcore-service/internal/repository/postgres"
	authUsecase "authcore-service/internal/service/auth"
	"authcore-service/internal/service/email"
	resetUsecase "authcore-service/internal/service/passwordreset"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
}

func NewServer() *Server {
	cfg := config.Load()
	engine := gin.New()
	return &Server{cfg: cfg, engine: engine}
}

func (s *Server) Start() error {
	// ----- Logger -----
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()
	s.logger = logger

	// ----- PostgreSQL -----
	pool, err := db.ConnectDB(s.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	logger.Info("connected to PostgreSQL")

	// ----- Rate limit store -----
	var store ratelimit.Store
	switch s.cfg.RateLimitStore {
	case "memory":
		store = ratelimit.NewMemoryStore(ratelimit.DefaultSweepInterval)
		logger.Info("rate limiter using in-process store")
	default:
		redisClient, err := db.NewRedisClient(db.RedisConfig{
			Addr:     s.cfg.RedisAddr,
			Password: s.cfg.RedisPass,
			DB:       s.cfg.RedisDB,
			PoolSize: 10,
		})
		if err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		store = ratelimit.NewRedisStore(redisClient, "")
		logger.Info("rate limiter using Redis store", zap.String("addr", s.cfg.RedisAddr))
	}
	limiter := ratelimit.NewLimiter(store)

	// ----- Token codec -----
	codec, err := token.NewCodec(s.cfg.Token)
	if err != nil {
		return fmt.Errorf("failed to build token codec: %w", err)
	}

	// ----- Email -----
	mailer := email.NewSender(
		s.cfg.SMTPHost,
		s.cfg.SMTPPort,
		s.cfg.SMTPUser,
		s.cfg.SMTPPass,
		s.cfg.SMTPFromName,
		s.cfg.BaseURL,
		s.cfg.SMTPSecure,
	)

	// ----- Repositories -----
	userRepo := postgres.NewUserRepository(pool)
	sessionRepo := postgres.NewSessionRepository(pool)
	resetTokenRepo := postgres.NewResetTokenRepository(pool)

	hasher := password.NewBcryptHasher(s.cfg.BcryptCost)
	recorder := audit.NewZapRecorder(logger)

	// ----- Services -----
	authService := authUsecase.NewService(userRepo, sessionRepo, hasher, codec, recorder, logger)
	resetService := resetUsecase.NewService(
		userRepo, resetTokenRepo, sessionRepo, hasher,
		limiter, s.cfg.Limits.PasswordReset,
		mailer, recorder, s.cfg.ResetTokenTTL, logger,
	)

	// ----- Handlers -----
	handlers := &Handlers{
		AuthHandler:      authHandler.NewAuthHandler(authService, logger),
		ResetHandler:     resetHandler.NewResetHandler(resetService, logger),
		RateLimitHandler: adminHandler.NewRateLimitHandler(limiter, logger),
	}

	s.engine.Use(middleware.RequestLogger(logger))
	s.engine.Use(middleware.RecoveryMiddleware(logger))
	s.engine.Use(middleware.CORS())

	SetupRouter(s.engine, logger, s.cfg.Limits, limiter, authService, handlers)

	logger.Info("starting HTTP server", zap.String("addr", s.cfg.HTTPAddr))
	return s.engine.Run(s.cfg.HTTPAddr)
}

// Shutdown is invoked from main on SIGINT/SIGTERM.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.logger != nil {
		s.logger.Info("server shutting down")
		return s.logger.Sync()
	}
	return nil
}
