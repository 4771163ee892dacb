package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"go-portfolio-cms/internal/model"
	"go-portfolio-cms/internal/security"
)

type adminVerifier interface {
	VerifyAdminSessionToken(tokenString string) *model.AdminClaims
}

const (
	adminUIPrefix   = "/admin"
	adminAPIPrefix  = "/api/v1/admin"
	adminLoginPath  = "/admin/login"
	adminAuthPrefix = "/api/v1/admin/auth"
)

// AdminGuard is the edge route guard. It runs ahead of all handlers and
// short-circuits unauthenticated access to the admin surface: API paths
// get a 401 JSON body, UI paths a redirect to the login page with the
// original destination preserved in ?next=.
type AdminGuard struct {
	admin  adminVerifier
	access accessVerifier
}

func NewAdminGuard(admin adminVerifier, access accessVerifier) *AdminGuard {
	return &AdminGuard{admin: admin, access: access}
}

func (g *AdminGuard) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		// The login page and the admin auth endpoints must stay reachable,
		// everything outside the admin surface is public.
		if path == adminLoginPath || strings.HasPrefix(path, adminAuthPrefix) || !g.isAdminPath(path) {
			next.ServeHTTP(w, r)
			return
		}

		if !g.authenticated(r) {
			g.reject(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (g *AdminGuard) isAdminPath(path string) bool {
	return path == adminUIPrefix ||
		strings.HasPrefix(path, adminUIPrefix+"/") ||
		strings.HasPrefix(path, adminAPIPrefix)
}

// authenticated accepts either session domain: the admin session cookie,
// or a user access token carrying the admin role. All failure modes look
// identical to the caller.
func (g *AdminGuard) authenticated(r *http.Request) bool {
	if cookie, err := r.Cookie(security.AdminSessionCookie); err == nil && cookie.Value != "" {
		if claims := g.admin.VerifyAdminSessionToken(cookie.Value); claims != nil {
			return true
		}
	}

	if token := AccessTokenFromRequest(r); token != "" {
		claims, err := g.access.VerifyAccessToken(token)
		if err == nil && claims.Role == model.RoleAdmin {
			return true
		}
	}

	return false
}

func (g *AdminGuard) reject(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		writeAuthError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	target := adminLoginPath + "?next=" + url.QueryEscape(r.URL.RequestURI())
	http.Redirect(w, r, target, http.StatusFound)
}
