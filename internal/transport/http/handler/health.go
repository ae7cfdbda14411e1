package handler

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-library-cms/internal/transport/http/middleware"
)

const readyTimeout = 2 * time.Second

// HealthCheck reports whether one backing service is reachable.
type HealthCheck func(ctx context.Context) error

// HealthHandler serves liveness ("ping") and readiness ("ready") checks.
type HealthHandler struct {
	checks map[string]HealthCheck
}

func NewHealthHandler(checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// ReadyEnvelope lists each dependency as "ok" or "down".
type ReadyEnvelope struct {
	Message string            `json:"message"`
	Checks  map[string]string `json:"checks"`
}

func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	switch chi.URLParam(r, "action") {
	case "ping":
		writeJSON(w, http.StatusOK, MessageEnvelope{Message: "pong"})
	case "ready":
		h.ready(w, r)
	default:
		middleware.WriteError(w, r, http.StatusBadRequest, "BAD_REQUEST", "unknown action")
	}
}

func (h *HealthHandler) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	out := ReadyEnvelope{Message: "ready", Checks: make(map[string]string, len(names))}
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			slog.Warn("readiness check failed", "check", name, "err", err)
			out.Checks[name] = "down"
			status = http.StatusServiceUnavailable
			out.Message = "not ready"
			continue
		}
		out.Checks[name] = "ok"
	}
	writeJSON(w, status, out)
}
