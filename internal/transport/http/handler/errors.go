package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-library-cms/internal/domain"
	"github.com/go-library-cms/internal/transport/http/middleware"
)

// writeServiceError maps a service error onto a status code and error code.
// Unknown errors become 500 without exposing their text.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var locked *domain.AccountLockedError
	switch {
	case errors.As(err, &locked):
		middleware.WriteError(w, r, http.StatusLocked, "ACCOUNT_LOCKED", locked.Error())
	case errors.Is(err, domain.ErrAccountLocked):
		middleware.WriteError(w, r, http.StatusLocked, "ACCOUNT_LOCKED", domain.ErrAccountLocked.Error())
	case errors.Is(err, domain.ErrInvalidLogin):
		middleware.WriteError(w, r, http.StatusUnauthorized, "INVALID_CREDENTIALS", domain.ErrInvalidLogin.Error())
	case errors.Is(err, domain.ErrOTPExpired):
		middleware.WriteError(w, r, http.StatusUnauthorized, "INVALID_OTP", domain.ErrOTPExpired.Error())
	case errors.Is(err, domain.ErrInvalidOTP):
		middleware.WriteError(w, r, http.StatusUnauthorized, "INVALID_OTP", domain.ErrOTPMismatch.Error())
	case errors.Is(err, domain.ErrInvalidToken), errors.Is(err, domain.ErrUnauthorized):
		middleware.WriteError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
	case errors.Is(err, domain.ErrForbidden):
		middleware.WriteError(w, r, http.StatusForbidden, "FORBIDDEN", cause(err, domain.ErrForbidden))
	case errors.Is(err, domain.ErrNotFound):
		middleware.WriteError(w, r, http.StatusNotFound, "NOT_FOUND", "resource not found")
	case errors.Is(err, domain.ErrConflict):
		middleware.WriteError(w, r, http.StatusConflict, "CONFLICT", cause(err, domain.ErrConflict))
	case errors.Is(err, domain.ErrBadRequest):
		middleware.WriteError(w, r, http.StatusBadRequest, "BAD_REQUEST", cause(err, domain.ErrBadRequest))
	default:
		slog.Error("unhandled service error", "path", r.URL.Path, "err", err)
		middleware.WriteError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// cause strips the trailing ": <sentinel>" added by %w wrapping.
func cause(err, sentinel error) string {
	return strings.TrimSuffix(err.Error(), ": "+sentinel.Error())
}
