// internal/domain/identity/dto.go
package identity

import "time"

// LoginRequest for credential authentication
type LoginRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	IPAddress string `json:"-"`
	UserAgent string `json:"-"`
}

// LoginResponse successful login/refresh response
type LoginResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    string    `json:"expires_at"`
	User         Principal `json:"user"`
}

// RefreshRequest for redeeming a refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// SessionInfo is the client-facing view of a session row.
type SessionInfo struct {
	ID           string    `json:"id"`
	IPAddress    string    `json:"ip_address"`
	UserAgent    string    `json:"user_agent"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
	Current      bool      `json:"current"`
}

// ResetRequest initiates a password reset
type ResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetConfirmRequest completes a password reset
type ResetConfirmRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// SessionInfoFromEntity converts a registry row for API output.
func SessionInfoFromEntity(s *Session, currentID string) SessionInfo {
	info := SessionInfo{
		ID:           s.ID,
		CreatedAt:    s.CreatedAt,
		LastActivity: s.LastActivity,
		Current:      s.ID == currentID,
	}
	if s.IPAddress.Valid {
		info.IPAddress = s.IPAddress.String
	}
	if s.UserAgent.Valid {
		info.UserAgent = s.UserAgent.String
	}
	return info
}
