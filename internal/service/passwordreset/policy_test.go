// internal/service/passwordreset/policy_test.go
package passwordreset

import (
	"testing"

	xerrors "authcore-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	cases := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid", "Str0ng!pass", false},
		{"valid with other symbol", "Abcdef1?", false},
		{"too short", "S1!a", true},
		{"no lowercase", "STRONG1!PASS", true},
		{"no uppercase", "str0ng!pass", true},
		{"no digit", "Strong!pass", true},
		{"no symbol", "Str0ngpass", true},
		{"empty", "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePassword(tc.password)
			if tc.wantErr {
				assert.ErrorIs(t, err, xerrors.ErrPasswordPolicy)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
