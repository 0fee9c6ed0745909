// Package access implements the shared access-password gate. The password is
// a static string handed to every operator; it keeps casual visitors out and
// is not an authentication system.
package access

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"ncmr/pkg/platform/middleware/request"
)

const HeaderAccessPassword = "X-Access-Password"

// RequirePassword rejects requests whose X-Access-Password header does not
// match expected. An empty expected password disables the gate.
func RequirePassword(expected string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if expected == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			supplied := r.Header.Get(HeaderAccessPassword)
			if subtle.ConstantTimeCompare([]byte(supplied), []byte(expected)) != 1 {
				ctx := r.Context()
				logger.WarnContext(ctx, "access password mismatch",
					"request_id", request.GetRequestID(ctx),
					"path", r.URL.Path,
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"access password required"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
