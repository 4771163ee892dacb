package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"go-portfolio-cms/internal/middleware"
	"go-portfolio-cms/internal/model"
	"go-portfolio-cms/internal/service"
)

type viewLimiter interface {
	Allow(action string, identity string, limit int, window time.Duration) bool
}

// ViewHandler counts public content views. Counting is best effort: a
// rate-limited caller gets the same 202 as a counted one, so scrapers
// cannot probe the limiter and a hot page never errors.
type ViewHandler struct {
	content *service.ContentService
	limiter viewLimiter
	limit   int
	window  time.Duration
}

func NewViewHandler(content *service.ContentService, limiter viewLimiter, limit int, window time.Duration) *ViewHandler {
	return &ViewHandler{content: content, limiter: limiter, limit: limit, window: window}
}

func (h *ViewHandler) Record(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")
	id := chi.URLParam(r, "id")

	if !h.content.IsSupported(entity) {
		writeError(w, model.ErrEntityNotSupported)
		return
	}

	if h.limiter.Allow("view", middleware.ExtractClientIP(r), h.limit, h.window) {
		// A missing item is also silent; view pings carry no feedback.
		_ = h.content.RecordView(r.Context(), entity, id)
	}

	w.WriteHeader(http.StatusAccepted)
}
