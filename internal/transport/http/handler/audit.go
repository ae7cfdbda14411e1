package handler

import (
	"net/http"

	"github.com/go-library-cms/internal/application/audit"
	"github.com/go-library-cms/internal/transport/http/middleware"
)

type AuditHandler struct {
	svc audit.Service
}

func NewAuditHandler(svc audit.Service) *AuditHandler { return &AuditHandler{svc: svc} }

func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	order, err := sortParam(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	logs, err := h.svc.List(r.Context(), middleware.RequestContextFrom(r), order)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newList(order, logs))
}
