// internal/domain/identity/entity.go
package identity

import (
	"database/sql"
	"time"
)

// User is the persisted account record. Owned by the external user store;
// the auth core only reads it (the single exception being the password
// update performed inside the reset-token consume transaction).
type User struct {
	ID           int64          `json:"id" db:"id"`
	Email        string         `json:"email" db:"email"`
	PasswordHash string         `json:"-" db:"password_hash"`
	Role         string         `json:"role" db:"role"`
	TenantID     int64          `json:"tenant_id" db:"tenant_id"`
	Status       string         `json:"status" db:"status"` // active, inactive, suspended
	FullName     sql.NullString `json:"full_name" db:"full_name"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at" db:"updated_at"`
}

// Principal is the authenticated caller threaded through request handling.
type Principal struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	TenantID  int64  `json:"tenant_id"`
	SessionID string `json:"session_id"`
}

// Principal derives the request-scoped view of a user.
func (u *User) Principal() Principal {
	return Principal{
		ID:       u.ID,
		Email:    u.Email,
		Role:     u.Role,
		TenantID: u.TenantID,
	}
}

// IsActive reports whether the account may authenticate.
func (u *User) IsActive() bool {
	return u.Status == "active"
}

// Session is one logical login. Rows are revoked, never deleted, so the
// registry doubles as an audit trail of devices.
type Session struct {
	ID           string         `json:"id" db:"id"`
	UserID       int64          `json:"user_id" db:"user_id"`
	IPAddress    sql.NullString `json:"ip_address" db:"ip_address"`
	UserAgent    sql.NullString `json:"user_agent" db:"user_agent"`
	RefreshJTI   sql.NullString `json:"-" db:"refresh_jti"`
	IsActive     bool           `json:"is_active" db:"is_active"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
	LastActivity time.Time      `json:"last_activity" db:"last_activity"`
}

// ResetToken is the persisted half of an opaque password-reset secret.
// Only the SHA-256 digest of the secret is ever stored.
type ResetToken struct {
	ID        int64        `json:"id" db:"id"`
	TokenHash string       `json:"-" db:"token_hash"`
	UserID    int64        `json:"user_id" db:"user_id"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
	ExpiresAt time.Time    `json:"expires_at" db:"expires_at"`
	UsedAt    sql.NullTime `json:"used_at" db:"used_at"`
}
