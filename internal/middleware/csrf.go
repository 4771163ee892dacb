package middleware

import (
	"net/http"

	"go-portfolio-cms/internal/model"
	"go-portfolio-cms/internal/security"
)

// RequireCSRF rejects state-mutating requests before any handler work when
// the double-submit pair does not line up.
func RequireCSRF(guard *security.CSRFGuard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !guard.VerifyRequest(r) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_ = jsonEncode(w, model.APIResponse{
					Success: false,
					Error:   &model.APIError{Code: "FORBIDDEN", Message: "invalid csrf token"},
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
