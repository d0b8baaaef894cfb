package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// Auth accepts requests carrying the static token, either bare or as a
// bearer token in the Authorization header.
func Auth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
			if authHeader == "" || token == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
				authHeader = strings.TrimSpace(authHeader[7:])
			}

			if subtle.ConstantTimeCompare([]byte(authHeader), []byte(token)) != 1 {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
