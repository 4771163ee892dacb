package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"go-portfolio-cms/internal/model"
	"go-portfolio-cms/internal/service"
)

// ContentHandler is the admin CRUD surface. One handler covers every
// registered entity; the entity name arrives as a URL parameter and
// dispatch happens in the service layer.
type ContentHandler struct {
	content *service.ContentService
}

func NewContentHandler(content *service.ContentService) *ContentHandler {
	return &ContentHandler{content: content}
}

func (h *ContentHandler) List(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")

	items, meta, err := h.content.List(r.Context(), entity, queryFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccessMeta(w, http.StatusOK, items, meta)
}

func (h *ContentHandler) Get(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")
	id := chi.URLParam(r, "id")

	item, err := h.content.Get(r.Context(), entity, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, item)
}

func (h *ContentHandler) Create(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")

	var payload map[string]any
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	item, err := h.content.Create(r.Context(), entity, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, item)
}

func (h *ContentHandler) Update(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")
	id := chi.URLParam(r, "id")

	var payload map[string]any
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	item, err := h.content.Update(r.Context(), entity, id, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, item)
}

func (h *ContentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")
	id := chi.URLParam(r, "id")

	if err := h.content.Delete(r.Context(), entity, id); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]string{"deleted": id})
}

func queryFromRequest(r *http.Request) model.ContentQuery {
	q := model.ContentQuery{
		Search: strings.TrimSpace(r.URL.Query().Get("search")),
	}

	if page, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		q.Page = page
	}
	if size, err := strconv.Atoi(r.URL.Query().Get("page_size")); err == nil {
		q.PageSize = size
	}

	return q
}
