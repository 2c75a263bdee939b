package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	h "eventrsvp/internal/delivery/http/helpers"
)

// RequireAdmin returns a wrapper that validates the Bearer token against the
// configured admin secret. The comparison is constant time. If the token is
// missing or wrong, it responds with 401 and does not call next.
func RequireAdmin(secret string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				h.WriteError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			const prefix = "Bearer "
			if !strings.HasPrefix(auth, prefix) {
				h.WriteError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			token := strings.TrimSpace(auth[len(prefix):])
			if secret == "" || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
				h.WriteError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			next(w, r)
		}
	}
}
