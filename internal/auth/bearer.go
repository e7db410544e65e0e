package auth

import (
	"crypto/subtle"
	"strings"
)

// SharedSecretLength is the exact length a shared secret must have. Shorter or
// longer secrets are treated as misconfiguration and reject every request.
const SharedSecretLength = 64

// BearerToken strips a case-insensitive "Bearer" scheme and surrounding
// whitespace from an Authorization header value. A header without the scheme
// is returned trimmed as-is.
func BearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) >= 6 && strings.EqualFold(header[:6], "bearer") {
		rest := header[6:]
		trimmed := strings.TrimLeft(rest, " \t")
		if len(trimmed) < len(rest) {
			return trimmed
		}
	}
	return header
}

// CheckBearer reports whether the Authorization header carries secret. It fails
// closed when secret does not have SharedSecretLength characters.
func CheckBearer(header, secret string) bool {
	if len(secret) != SharedSecretLength {
		return false
	}
	token := BearerToken(header)
	return subtle.ConstantTimeCompare([]byte(token), []byte(secret)) == 1
}
