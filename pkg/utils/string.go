package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// GenerateToken returns n cryptographically random bytes, URL-safe base64 encoded without padding.
func GenerateToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// NormalizeEmail trims surrounding whitespace and lowercases.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NameFromEmail turns the local part of an address into a display name:
// "jane_doe@x.com" becomes "Jane doe".
func NameFromEmail(email string) string {
	local := email
	if at := strings.LastIndex(email, "@"); at >= 0 {
		local = email[:at]
	}
	local = strings.TrimSpace(strings.ReplaceAll(local, "_", " "))
	if local == "" {
		return ""
	}

	r, size := utf8.DecodeRuneInString(local)
	return string(unicode.ToUpper(r)) + strings.ToLower(local[size:])
}
