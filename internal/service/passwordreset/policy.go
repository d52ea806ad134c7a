// internal/service/passwordreset/policy.go
package passwordreset

import (
	"fmt"
	"strings"
	"unicode"

	xerrors "authcore-service/internal/pkg/errors"
)

const minPasswordLength = 8

const symbolSet = "!@#$%^&*()-_=+[]{};:'\",.<>/?\\|`~"

// ValidatePassword enforces the password policy: at least 8 characters with
// at least one lowercase letter, one uppercase letter, one digit and one
// symbol. The returned error wraps ErrPasswordPolicy and names the first
// rule that failed.
func ValidatePassword(plain string) error {
	if len(plain) < minPasswordLength {
		return fmt.Errorf("%w: must be at least %d characters", xerrors.ErrPasswordPolicy, minPasswordLength)
	}

	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range plain {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(symbolSet, r):
			hasSymbol = true
		}
	}

	switch {
	case !hasLower:
		return fmt.Errorf("%w: must contain a lowercase letter", xerrors.ErrPasswordPolicy)
	case !hasUpper:
		return fmt.Errorf("%w: must contain an uppercase letter", xerrors.ErrPasswordPolicy)
	case !hasDigit:
		return fmt.Errorf("%w: must contain a digit", xerrors.ErrPasswordPolicy)
	case !hasSymbol:
		return fmt.Errorf("%w: must contain a symbol", xerrors.ErrPasswordPolicy)
	}

	return nil
}
