package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-library-cms/internal/application/user"
	"github.com/go-library-cms/internal/domain"
	"github.com/go-library-cms/internal/transport/http/middleware"
)

// UserHandler handles user management endpoints.
type UserHandler struct {
	svc user.Service
}

func NewUserHandler(svc user.Service) *UserHandler { return &UserHandler{svc: svc} }

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterUserRequest
	if err := decodeValid(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	u, err := h.svc.Register(r.Context(), middleware.RequestContextFrom(r), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	order, err := sortParam(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	users, err := h.svc.List(r.Context(), middleware.RequestContextFrom(r), order)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newList(order, users))
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateUserRequest
	if err := decodeValid(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	u, err := h.svc.Update(r.Context(), middleware.RequestContextFrom(r), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), middleware.RequestContextFrom(r), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "user deleted"})
}
