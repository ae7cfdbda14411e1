package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-library-cms/internal/application/article"
	"github.com/go-library-cms/internal/domain"
	"github.com/go-library-cms/internal/transport/http/middleware"
)

type ArticleHandler struct {
	svc article.Service
}

func NewArticleHandler(svc article.Service) *ArticleHandler { return &ArticleHandler{svc: svc} }

func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateArticleRequest
	if err := decodeValid(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	a, err := h.svc.Create(r.Context(), middleware.RequestContextFrom(r), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (h *ArticleHandler) List(w http.ResponseWriter, r *http.Request) {
	order, err := sortParam(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	articles, err := h.svc.List(r.Context(), middleware.RequestContextFrom(r), order)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newList(order, articles))
}

func (h *ArticleHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateArticleRequest
	if err := decodeValid(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	a, err := h.svc.Update(r.Context(), middleware.RequestContextFrom(r), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *ArticleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), middleware.RequestContextFrom(r), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "article deleted"})
}
