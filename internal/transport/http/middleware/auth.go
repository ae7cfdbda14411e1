package middleware

import (
	"context"
	"net/http"
	"strings"

	jwtinfra "github.com/go-library-cms/internal/infrastructure/jwt"
	"github.com/go-library-cms/internal/pkg/reqctx"
)

type contextKey string

const ClaimsKey contextKey = "claims"

type tokenVerifier interface {
	Verify(token string) (*jwtinfra.Claims, error)
}

// Authenticate attaches claims for a valid Bearer token. Requests without a
// valid token pass through anonymously; RequireAuth rejects them where needed.
func Authenticate(v tokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := v.Verify(strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects requests that Authenticate left anonymous.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ClaimsFromContext(r.Context()); !ok {
			WriteError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClaimsFromContext extracts JWT claims from the request context.
func ClaimsFromContext(ctx context.Context) (*jwtinfra.Claims, bool) {
	c, ok := ctx.Value(ClaimsKey).(*jwtinfra.Claims)
	return c, ok
}

// RequestContextFrom builds the caller description services receive.
func RequestContextFrom(r *http.Request) reqctx.RequestContext {
	rc := reqctx.RequestContext{
		SourceAddress: realIP(r),
		UserAgent:     r.UserAgent(),
		Method:        r.Method,
		Path:          r.URL.Path,
	}
	if c, ok := ClaimsFromContext(r.Context()); ok {
		rc.Principal = &reqctx.Principal{UserID: c.UserID(), Username: c.Username, Role: c.Role}
	}
	return rc
}
