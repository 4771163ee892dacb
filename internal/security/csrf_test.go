package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issueForTest(t *testing.T, g *CSRFGuard) (string, *http.Cookie) {
	t.Helper()

	rec := httptest.NewRecorder()
	token, err := g.IssueToken(rec)
	require.NoError(t, err)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, CSRFCookieName, cookies[0].Name)
	require.False(t, cookies[0].HttpOnly, "csrf cookie must be readable by client script")

	return token, cookies[0]
}

func TestCSRFGuard_ValidPairPasses(t *testing.T) {
	g := NewCSRFGuard("test-csrf-secret", time.Hour, false)
	token, cookie := issueForTest(t, g)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	req.AddCookie(cookie)
	req.Header.Set(CSRFHeaderName, token)

	assert.True(t, g.VerifyRequest(req))
}

func TestCSRFGuard_MissingHeaderFails(t *testing.T) {
	g := NewCSRFGuard("test-csrf-secret", time.Hour, false)
	_, cookie := issueForTest(t, g)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	req.AddCookie(cookie)

	assert.False(t, g.VerifyRequest(req))
}

func TestCSRFGuard_MissingCookieFails(t *testing.T) {
	g := NewCSRFGuard("test-csrf-secret", time.Hour, false)
	token, _ := issueForTest(t, g)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	req.Header.Set(CSRFHeaderName, token)

	assert.False(t, g.VerifyRequest(req))
}

func TestCSRFGuard_MismatchedHeaderFails(t *testing.T) {
	g := NewCSRFGuard("test-csrf-secret", time.Hour, false)
	_, cookie := issueForTest(t, g)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	req.AddCookie(cookie)
	req.Header.Set(CSRFHeaderName, "some-other-token")

	assert.False(t, g.VerifyRequest(req))
}

func TestCSRFGuard_TamperedSignatureFails(t *testing.T) {
	g := NewCSRFGuard("test-csrf-secret", time.Hour, false)
	token, cookie := issueForTest(t, g)

	// An attacker who can write cookies (subdomain takeover) still cannot
	// forge the HMAC without the server secret.
	forged := *cookie
	forged.Value = token + ".forged-signature"

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	req.AddCookie(&forged)
	req.Header.Set(CSRFHeaderName, token)

	assert.False(t, g.VerifyRequest(req))
}

func TestCSRFGuard_TokenSignedByOtherSecretFails(t *testing.T) {
	issuer := NewCSRFGuard("secret-a", time.Hour, false)
	verifier := NewCSRFGuard("secret-b", time.Hour, false)
	token, cookie := issueForTest(t, issuer)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	req.AddCookie(cookie)
	req.Header.Set(CSRFHeaderName, token)

	assert.False(t, verifier.VerifyRequest(req))
}

func TestCSRFGuard_StructurallyInvalidCookieFails(t *testing.T) {
	g := NewCSRFGuard("test-csrf-secret", time.Hour, false)
	token, _ := issueForTest(t, g)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "no-separator-here"})
	req.Header.Set(CSRFHeaderName, token)

	assert.False(t, g.VerifyRequest(req))
}
