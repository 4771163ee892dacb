package handler

import (
	"net/http"
	"strings"
	"time"

	"go-portfolio-cms/internal/middleware"
	"go-portfolio-cms/internal/model"
	"go-portfolio-cms/internal/security"
	"go-portfolio-cms/internal/service"
	"go-portfolio-cms/pkg/apierror"
)

// AuthHandler owns the user session lifecycle: login, refresh rotation,
// logout, session introspection, and CSRF token issuance. Tokens travel in
// HttpOnly cookies; the response body never carries them.
type AuthHandler struct {
	auth   *service.AuthService
	csrf   *security.CSRFGuard
	secure bool
}

func NewAuthHandler(auth *service.AuthService, csrf *security.CSRFGuard, secureCookies bool) *AuthHandler {
	return &AuthHandler{auth: auth, csrf: csrf, secure: secureCookies}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		writeError(w, apierror.BadRequest("Email and password are required"))
		return
	}

	pair, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setSessionCookies(w, pair)
	writeSuccess(w, http.StatusOK, model.SessionData{Authenticated: true, User: &pair.User})
}

// Refresh rotates the refresh credential. Replay of a consumed credential
// comes back as the same 401 a missing cookie would.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(security.RefreshTokenCookie)
	if err != nil || cookie.Value == "" {
		h.clearSessionCookies(w)
		writeError(w, model.ErrTokenInvalid)
		return
	}

	pair, err := h.auth.RotateRefreshToken(r.Context(), cookie.Value)
	if err != nil {
		h.clearSessionCookies(w)
		writeError(w, err)
		return
	}

	h.setSessionCookies(w, pair)
	writeSuccess(w, http.StatusOK, model.SessionData{Authenticated: true, User: &pair.User})
}

// Logout revokes the refresh token server side when one is present and
// clears the session cookies unconditionally. It never fails.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(security.RefreshTokenCookie); err == nil && cookie.Value != "" {
		h.auth.RevokeRefreshToken(r.Context(), cookie.Value)
	}

	h.clearSessionCookies(w)
	writeSuccess(w, http.StatusOK, model.SessionData{Authenticated: false})
}

// Session reports the current session without erroring so the frontend can
// poll it on load. An invalid or absent token is just "not authenticated".
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	token := middleware.AccessTokenFromRequest(r)
	if token == "" {
		writeSuccess(w, http.StatusOK, model.SessionData{Authenticated: false})
		return
	}

	claims, err := h.auth.VerifyAccessToken(token)
	if err != nil {
		writeSuccess(w, http.StatusOK, model.SessionData{Authenticated: false})
		return
	}

	user, err := h.auth.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		writeSuccess(w, http.StatusOK, model.SessionData{Authenticated: false})
		return
	}

	writeSuccess(w, http.StatusOK, model.SessionData{Authenticated: true, User: &user})
}

// Me returns the authenticated user. Unlike Session it sits behind the
// auth middleware, so an invalid token is a 401 rather than a soft miss.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	user, err := h.auth.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, user)
}

// CSRFToken issues a fresh double-submit pair: the signed cookie plus the
// raw token in the body for the client to echo in X-CSRF-Token.
func (h *AuthHandler) CSRFToken(w http.ResponseWriter, r *http.Request) {
	token, err := h.csrf.IssueToken(w)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]string{"csrf_token": token})
}

func (h *AuthHandler) setSessionCookies(w http.ResponseWriter, pair model.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     security.AccessTokenCookie,
		Value:    pair.AccessToken,
		Path:     "/",
		Expires:  pair.AccessExpiresAt,
		MaxAge:   int(time.Until(pair.AccessExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	http.SetCookie(w, &http.Cookie{
		Name:     security.RefreshTokenCookie,
		Value:    pair.RefreshToken,
		Path:     security.RefreshCookiePath,
		Expires:  pair.RefreshExpiresAt,
		MaxAge:   int(time.Until(pair.RefreshExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearSessionCookies(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     security.AccessTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	http.SetCookie(w, &http.Cookie{
		Name:     security.RefreshTokenCookie,
		Value:    "",
		Path:     security.RefreshCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteStrictMode,
	})
}
