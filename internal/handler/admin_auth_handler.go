package handler

import (
	"net/http"
	"strings"
	"time"

	"go-portfolio-cms/internal/model"
	"go-portfolio-cms/internal/security"
	"go-portfolio-cms/internal/service"
	"go-portfolio-cms/pkg/apierror"
)

// AdminAuthHandler manages the admin session, a trust domain separate from
// the user access/refresh pair. It issues a single long-lived cookie scoped
// to the whole site so the edge guard can check it on any admin path.
type AdminAuthHandler struct {
	auth   *service.AuthService
	secure bool
}

func NewAdminAuthHandler(auth *service.AuthService, secureCookies bool) *AdminAuthHandler {
	return &AdminAuthHandler{auth: auth, secure: secureCookies}
}

func (h *AdminAuthHandler) Login(w http.ResponseWriter, r *http.Request) {
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

	user, err := h.auth.VerifyAdminCredentials(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := h.auth.CreateAdminSessionToken(user.Email)
	if err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     security.AdminSessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.auth.AdminSessionTTL()),
		MaxAge:   int(h.auth.AdminSessionTTL().Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	writeSuccess(w, http.StatusOK, model.AdminSessionData{Authenticated: true, Email: user.Email})
}

func (h *AdminAuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearCookie(w)
	writeSuccess(w, http.StatusOK, model.AdminSessionData{Authenticated: false})
}

// Session never errors; an invalid cookie is reported as unauthenticated
// so the admin UI can decide whether to show the login page.
func (h *AdminAuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(security.AdminSessionCookie)
	if err != nil || cookie.Value == "" {
		writeSuccess(w, http.StatusOK, model.AdminSessionData{Authenticated: false})
		return
	}

	claims := h.auth.VerifyAdminSessionToken(cookie.Value)
	if claims == nil {
		h.clearCookie(w)
		writeSuccess(w, http.StatusOK, model.AdminSessionData{Authenticated: false})
		return
	}

	writeSuccess(w, http.StatusOK, model.AdminSessionData{Authenticated: true, Email: claims.Email})
}

func (h *AdminAuthHandler) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     security.AdminSessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
