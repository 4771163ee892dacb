package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-portfolio-cms/internal/model"
	"go-portfolio-cms/internal/security"
)

func chained(verifier accessVerifier, roles ...string) http.Handler {
	m := NewAuthMiddleware(verifier)

	var inner http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ClaimsFromContext(r.Context()); !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	if len(roles) > 0 {
		inner = m.RequireRoles(roles...)(inner)
	}
	return m.RequireAuth(inner)
}

func TestRequireAuthAcceptsCookieAndBearer(t *testing.T) {
	verifier := &fakeAccessVerifier{valid: map[string]*model.AccessClaims{
		"tok": {UserID: "u1", Role: model.RoleEditor},
	}}
	handler := chained(verifier)

	byCookie := httptest.NewRequest(http.MethodGet, "/", nil)
	byCookie.AddCookie(&http.Cookie{Name: security.AccessTokenCookie, Value: "tok"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, byCookie)
	assert.Equal(t, http.StatusOK, rec.Code)

	byHeader := httptest.NewRequest(http.MethodGet, "/", nil)
	byHeader.Header.Set("Authorization", "Bearer tok")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, byHeader)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuthUniform401(t *testing.T) {
	verifier := &fakeAccessVerifier{valid: map[string]*model.AccessClaims{}}
	handler := chained(verifier)

	missing := httptest.NewRecorder()
	handler.ServeHTTP(missing, httptest.NewRequest(http.MethodGet, "/", nil))

	invalid := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	handler.ServeHTTP(invalid, req)

	require.Equal(t, http.StatusUnauthorized, missing.Code)
	require.Equal(t, http.StatusUnauthorized, invalid.Code)
	assert.Equal(t, missing.Body.String(), invalid.Body.String())
}

func TestRequireRolesForbidsWrongRole(t *testing.T) {
	verifier := &fakeAccessVerifier{valid: map[string]*model.AccessClaims{
		"editor-tok": {UserID: "u2", Role: model.RoleEditor},
		"admin-tok":  {UserID: "u1", Role: model.RoleAdmin},
	}}
	handler := chained(verifier, model.RoleAdmin)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer editor-tok")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer admin-tok")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
