package xerrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the auth core. Handlers map these onto HTTP status
// codes; services wrap them with context via Wrap or fmt.Errorf("%w").
var (
	ErrNotFound           = errors.New("resource not found")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrSessionInactive    = errors.New("session inactive or revoked")
	ErrRateLimited        = errors.New("too many requests")
	ErrPasswordPolicy     = errors.New("password does not meet policy")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
	ErrForbidden          = errors.New("forbidden")
	ErrAccountInactive    = errors.New("account is not active")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInternal           = errors.New("internal server error")
)

// Wrap adds context to an error (similar to fmt.Errorf("%w")).
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is allows checking whether an error is a specific sentinel error.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// MessageOrDefault returns err.Error() or a fallback message if err is nil.
func MessageOrDefault(err error, fallback string) string {
	if err != nil {
		return err.Error()
	}
	return fallback
}
