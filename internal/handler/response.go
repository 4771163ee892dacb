package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"go-portfolio-cms/internal/model"
	"go-portfolio-cms/internal/observability"
	"go-portfolio-cms/pkg/apierror"
)

func writeJSON(w http.ResponseWriter, status int, body model.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, model.APIResponse{Success: true, Data: data})
}

func writeSuccessMeta(w http.ResponseWriter, status int, data any, meta model.Meta) {
	writeJSON(w, status, model.APIResponse{Success: true, Data: data, Meta: &meta})
}

// writeError maps service errors onto HTTP statuses. Credential and token
// failures collapse into one indistinguishable 401 body; unclassified
// errors go to Sentry and come back as an opaque 500.
func writeError(w http.ResponseWriter, err error) {
	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		writeJSON(w, apiErr.HTTPStatus, model.APIResponse{
			Success: false,
			Error:   &model.APIError{Code: apiErr.Code, Message: apiErr.Message, Field: apiErr.Field},
		})
		return
	}

	switch {
	case errors.Is(err, model.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, model.APIResponse{
			Success: false,
			Error:   &model.APIError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password"},
		})
	case errors.Is(err, model.ErrTokenInvalid), errors.Is(err, model.ErrTokenMismatch):
		writeJSON(w, http.StatusUnauthorized, model.APIResponse{
			Success: false,
			Error:   &model.APIError{Code: "UNAUTHORIZED", Message: "Session expired"},
		})
	case errors.Is(err, model.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, model.APIResponse{
			Success: false,
			Error:   &model.APIError{Code: "UNAUTHORIZED", Message: "authentication required"},
		})
	case errors.Is(err, model.ErrForbidden):
		writeJSON(w, http.StatusForbidden, model.APIResponse{
			Success: false,
			Error:   &model.APIError{Code: "FORBIDDEN", Message: "insufficient permissions"},
		})
	case errors.Is(err, model.ErrEntityNotSupported),
		errors.Is(err, model.ErrItemNotFound),
		errors.Is(err, model.ErrUserNotFound),
		errors.Is(err, model.ErrUploadNotFound):
		writeJSON(w, http.StatusNotFound, model.APIResponse{
			Success: false,
			Error:   &model.APIError{Code: "NOT_FOUND", Message: "Resource not found"},
		})
	case errors.Is(err, model.ErrItemConflict), errors.Is(err, model.ErrUserAlreadyExists):
		writeJSON(w, http.StatusConflict, model.APIResponse{
			Success: false,
			Error:   &model.APIError{Code: "CONFLICT", Message: "Resource already exists"},
		})
	case errors.Is(err, model.ErrUploadNotAllowed):
		writeJSON(w, http.StatusUnsupportedMediaType, model.APIResponse{
			Success: false,
			Error:   &model.APIError{Code: "UNSUPPORTED_MEDIA_TYPE", Message: "File type not allowed"},
		})
	case errors.Is(err, model.ErrUploadTooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, model.APIResponse{
			Success: false,
			Error:   &model.APIError{Code: "PAYLOAD_TOO_LARGE", Message: "Upload exceeds the size limit"},
		})
	case errors.Is(err, model.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, model.APIResponse{
			Success: false,
			Error:   &model.APIError{Code: "BAD_REQUEST", Message: "Invalid request"},
		})
	default:
		slog.Error("unhandled error", "error", err)
		observability.CaptureError(err)
		writeJSON(w, http.StatusInternalServerError, model.APIResponse{
			Success: false,
			Error:   &model.APIError{Code: "INTERNAL_ERROR", Message: "Internal server error"},
		})
	}
}

func decodeBody(r *http.Request, dst any) error {
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apierror.BadRequest("Malformed request body")
	}

	return nil
}
