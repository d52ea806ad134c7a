// internal/pkg/ratelimit/keys.go
package ratelimit

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Key builders. Every strategy namespaces its output so keys from
// different strategies can never collide in the shared store.

func normalizeIP(ip string) string {
	if ip == "" {
		return "unknown"
	}
	return ip
}

// KeyByIP scopes the window to a client address.
func KeyByIP(ip string) string {
	return "ip:" + normalizeIP(ip)
}

// KeyByUser scopes to the authenticated user, falling back to the IP when
// the request carries no identity.
func KeyByUser(userID int64, ip string) string {
	if userID <= 0 {
		return KeyByIP(ip)
	}
	return fmt.Sprintf("user:%d", userID)
}

// KeyByTenant scopes to the tenant, falling back to the user strategy.
func KeyByTenant(tenantID, userID int64, ip string) string {
	if tenantID <= 0 {
		return KeyByUser(userID, ip)
	}
	return fmt.Sprintf("tenant:%d", tenantID)
}

// KeyByIPUserAgent combines address and user agent for pre-authentication
// endpoints where no stable identity exists yet. The agent string is
// hashed so hostile clients cannot inflate key size.
func KeyByIPUserAgent(ip, userAgent string) string {
	sum := sha256.Sum256([]byte(userAgent))
	return "ipua:" + normalizeIP(ip) + ":" + hex.EncodeToString(sum[:8])
}
