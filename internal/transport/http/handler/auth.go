package handler

import (
	"net/http"

	"github.com/go-library-cms/internal/application/auth"
	"github.com/go-library-cms/internal/transport/http/middleware"
)

// AuthHandler serves the two login steps.
type AuthHandler struct {
	svc auth.Service
}

func NewAuthHandler(svc auth.Service) *AuthHandler { return &AuthHandler{svc: svc} }

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := decodeValid(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	res, err := h.svc.LoginStep1(r.Context(), middleware.RequestContextFrom(r), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req auth.VerifyOTPRequest
	if err := decodeValid(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	res, err := h.svc.VerifyOTP(r.Context(), middleware.RequestContextFrom(r), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
