package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"go-portfolio-cms/internal/model"
	"go-portfolio-cms/internal/service"
	"go-portfolio-cms/pkg/apierror"
)

// MediaHandler covers admin uploads and public file serving.
type MediaHandler struct {
	media   *service.MediaService
	maxSize int64
}

func NewMediaHandler(media *service.MediaService, maxUploadSize int64) *MediaHandler {
	return &MediaHandler{media: media, maxSize: maxUploadSize}
}

func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize)

	if err := r.ParseMultipartForm(h.maxSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, model.ErrUploadTooLarge)
			return
		}
		writeError(w, apierror.BadRequest("Malformed multipart body"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, apierror.BadRequest("Missing file field"))
		return
	}
	defer file.Close()

	upload, err := h.media.Store(header.Filename, file, header.Size)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, upload)
}

// Serve streams a stored file. Keys are slash-separated paths; chi keeps
// them in the wildcard segment.
func (h *MediaHandler) Serve(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if key == "" {
		writeError(w, model.ErrUploadNotFound)
		return
	}

	f, err := h.media.Open(key)
	if err != nil {
		writeError(w, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

func (h *MediaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if key == "" {
		writeError(w, model.ErrUploadNotFound)
		return
	}

	if err := h.media.Remove(key); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]string{"deleted": key})
}
