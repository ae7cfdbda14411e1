package middleware

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-library-cms/internal/domain"
)

// RoleDecision reports whether role is one of allowed.
func RoleDecision(role string, allowed ...string) domain.Decision {
	if slices.Contains(allowed, role) {
		return domain.Allow()
	}
	return domain.Deny("role " + role + " may not access this resource")
}

// RequireRole lets the request through only when the token's role is one of
// allowedRoles.
func RequireRole(allowedRoles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				WriteError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
				return
			}
			if d := RoleDecision(claims.Role, allowedRoles...); !d.Allowed {
				slog.Info("role denied", "username", claims.Username, "path", r.URL.Path, "reason", d.Reason)
				WriteError(w, r, http.StatusForbidden, "FORBIDDEN", d.Reason)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
