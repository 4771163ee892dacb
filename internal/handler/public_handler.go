package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-portfolio-cms/internal/service"
)

// PublicHandler serves the read-only content API the portfolio frontend
// renders from. No session required.
type PublicHandler struct {
	content *service.ContentService
}

func NewPublicHandler(content *service.ContentService) *PublicHandler {
	return &PublicHandler{content: content}
}

func (h *PublicHandler) List(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")

	items, meta, err := h.content.List(r.Context(), entity, queryFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccessMeta(w, http.StatusOK, items, meta)
}

func (h *PublicHandler) Get(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")
	id := chi.URLParam(r, "id")

	item, err := h.content.Get(r.Context(), entity, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, item)
}

// GetSingleton serves single-instance entities like the resume and the
// site configuration without requiring the caller to know the row id.
func (h *PublicHandler) GetSingleton(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")

	item, err := h.content.GetSingleton(r.Context(), entity)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, item)
}
