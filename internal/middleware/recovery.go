package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"go-portfolio-cms/internal/model"
	"go-portfolio-cms/internal/observability"
)

// Recovery turns panics into 500 responses instead of dropped connections.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("panic recovered",
					"panic", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				observability.CapturePanic(rec)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = jsonEncode(w, model.APIResponse{
					Success: false,
					Error:   &model.APIError{Code: "INTERNAL_ERROR", Message: "Internal server error"},
				})
			}
		}()

		next.ServeHTTP(w, r)
	})
}
