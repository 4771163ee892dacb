// Package security holds the CSRF double-submit guard. The token travels
// twice: once in a readable cookie and once in a request header set by
// client-side code. A cross-origin attacker can trigger the cookie but
// cannot read it, so it can never populate the header.
package security

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"
	"time"
)

const (
	CSRFCookieName = "csrf_token"
	CSRFHeaderName = "X-CSRF-Token"

	csrfTokenBytes = 32
)

type CSRFGuard struct {
	secret   []byte
	ttl      time.Duration
	secure   bool
}

func NewCSRFGuard(secret string, ttl time.Duration, secure bool) *CSRFGuard {
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}

	return &CSRFGuard{secret: []byte(secret), ttl: ttl, secure: secure}
}

// IssueToken generates a fresh token, sets the signed cookie, and returns
// the raw token so the handler can echo it in the response body.
func (g *CSRFGuard) IssueToken(w http.ResponseWriter) (string, error) {
	buf := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	token := base64.RawURLEncoding.EncodeToString(buf)

	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    token + "." + g.sign(token),
		Path:     "/",
		MaxAge:   int(g.ttl.Seconds()),
		Secure:   g.secure,
		HttpOnly: false, // client script must read it to echo the header
		SameSite: http.SameSiteLaxMode,
	})

	return token, nil
}

// VerifyRequest reports whether the request carries a matching header and
// cookie token with a valid signature. It never distinguishes failure
// causes; any structural problem is simply false.
func (g *CSRFGuard) VerifyRequest(r *http.Request) bool {
	header := strings.TrimSpace(r.Header.Get(CSRFHeaderName))
	if header == "" {
		return false
	}

	cookie, err := r.Cookie(CSRFCookieName)
	if err != nil {
		return false
	}

	token, signature, found := strings.Cut(cookie.Value, ".")
	if !found || token == "" || signature == "" {
		return false
	}

	expected := g.sign(token)
	if subtle.ConstantTimeCompare([]byte(signature), []byte(expected)) != 1 {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(header), []byte(token)) == 1
}

func (g *CSRFGuard) sign(token string) string {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(token))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
