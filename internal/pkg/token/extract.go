// internal/pkg/token/extract.go
package token

import (
	"net/http"
	"strings"
)

// ExtractFromAuthorizationHeader pulls the bearer token out of an
// Authorization header value. Returns "" when the header is absent or not
// a bearer credential. Pure string parsing, no I/O.
func ExtractFromAuthorizationHeader(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// ExtractFromCookie returns the named cookie's value, or "" when missing.
func ExtractFromCookie(cookies []*http.Cookie, name string) string {
	for _, c := range cookies {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}
