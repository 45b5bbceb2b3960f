package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/UnitedWeRise-org/UnitedWeRise-sub011/internal/auth"
	"github.com/UnitedWeRise-org/UnitedWeRise-sub011/internal/middleware"
)

// Authenticate resolves an optional Authorization bearer token and stores
// the user ID in the request context, where the logging middleware and
// user-keyed rate limiting pick it up. Requests without a valid access
// token pass through as anonymous; this middleware never rejects.
func Authenticate(jwt *auth.JWTService, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID := bearerSubject(jwt, r, logger); userID != "" {
				r = r.WithContext(middleware.SetUserID(r.Context(), userID))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bearerSubject returns the access-token subject, or empty string when the
// request carries no usable token.
func bearerSubject(jwt *auth.JWTService, r *http.Request, logger *slog.Logger) string {
	if jwt == nil {
		return ""
	}

	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return ""
	}

	claims, err := jwt.ValidateToken(token)
	if err != nil {
		logger.DebugContext(r.Context(), "bearer token rejected, serving anonymously", "error", err)
		return ""
	}
	if claims.Type != auth.TokenTypeAccess {
		return ""
	}
	return claims.Subject
}
