// internal/config/config.go
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"authcore-service/internal/pkg/ratelimit"
	"authcore-service/internal/pkg/token"
)

type AppConfig struct {
	// Server
	HTTPAddr string
	BaseURL  string

	// Storage
	DatabaseURL string
	RedisAddr   string
	RedisPass   string
	RedisDB     int

	// Which rate-limit store backs the limiter: "memory" or "redis".
	RateLimitStore string

	// Token signing
	Token token.Config

	// Rate-limit classes
	Limits ratelimit.Classes

	// Password hashing
	BcryptCost int

	// Reset token lifetime
	ResetTokenTTL time.Duration

	// SMTP
	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPass     string
	SMTPFromName string
	SMTPSecure   bool
}

// Load loads environment variables into AppConfig.
func Load() AppConfig {
	limits := ratelimit.DefaultClasses()
	limits.Auth = getEnvLimit("RATE_LIMIT_AUTH", limits.Auth)
	limits.PasswordReset = getEnvLimit("RATE_LIMIT_PASSWORD_RESET", limits.PasswordReset)
	limits.API = getEnvLimit("RATE_LIMIT_API", limits.API)
	limits.Upload = getEnvLimit("RATE_LIMIT_UPLOAD", limits.Upload)
	limits.Report = getEnvLimit("RATE_LIMIT_REPORT", limits.Report)

	return AppConfig{
		HTTPAddr: getEnv("HTTP_ADDR", ":8000"),
		BaseURL:  getEnv("BASE_URL", "http://localhost:8000"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:   getEnv("REDIS_PASS", ""),
		RedisDB:     getEnvInt("REDIS_DB", 0),

		RateLimitStore: strings.ToLower(getEnv("RATE_LIMIT_STORE", "redis")),

		Token: token.Config{
			AccessSecret:  getEnv("JWT_SIGNING_SECRET", ""),
			RefreshSecret: getEnv("JWT_REFRESH_SIGNING_SECRET", ""),
			AccessTTL:     getEnvDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
			RefreshTTL:    getEnvDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
			ActivationTTL: getEnvDuration("ACTIVATION_TOKEN_TTL", 24*time.Hour),
			ResetTTL:      getEnvDuration("RESET_TOKEN_TTL", time.Hour),
		},

		Limits: limits,

		BcryptCost:    getEnvInt("BCRYPT_COST", 12),
		ResetTokenTTL: getEnvDuration("RESET_TOKEN_TTL", time.Hour),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "465"),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPass:     getEnv("SMTP_PASS", ""),
		SMTPFromName: getEnv("SMTP_FROM_NAME", "AuthCore"),
		SMTPSecure:   strings.ToLower(getEnv("SMTP_SECURE", "true")) == "true",
	}
}

// --- Helper functions ---

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// getEnvLimit parses a "max/window" tuple, e.g. "20/15m" or "50/1h".
func getEnvLimit(key string, fallback ratelimit.Config) ratelimit.Config {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.SplitN(v, "/", 2)
	if len(parts) != 2 {
		return fallback
	}
	max, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil || max <= 0 {
		return fallback
	}
	window, err := time.ParseDuration(strings.TrimSpace(parts[1]))
	if err != nil || window <= 0 {
		return fallback
	}
	return ratelimit.Config{Window: window, MaxRequests: max}
}
