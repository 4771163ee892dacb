package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-portfolio-cms/internal/security"
)

func TestRequireCSRFRejectsBeforeHandler(t *testing.T) {
	guard := security.NewCSRFGuard("csrf-test-secret", time.Hour, false)

	handlerRan := false
	handler := RequireCSRF(guard)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerRan = true
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/admin/content/project", nil))

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, handlerRan)
	assert.Contains(t, rec.Body.String(), "FORBIDDEN")
}

func TestRequireCSRFPassesValidPair(t *testing.T) {
	guard := security.NewCSRFGuard("csrf-test-secret", time.Hour, false)

	issueRec := httptest.NewRecorder()
	token, err := guard.IssueToken(issueRec)
	require.NoError(t, err)

	cookies := issueRec.Result().Cookies()
	require.NotEmpty(t, cookies)

	handler := RequireCSRF(guard)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/content/project", nil)
	req.Header.Set(security.CSRFHeaderName, token)
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
