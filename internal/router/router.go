package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-portfolio-cms/internal/config"
	"go-portfolio-cms/internal/handler"
	"go-portfolio-cms/internal/middleware"
	"go-portfolio-cms/internal/security"
)

type Dependencies struct {
	Config *config.Config

	Auth      *handler.AuthHandler
	AdminAuth *handler.AdminAuthHandler
	Content   *handler.ContentHandler
	Public    *handler.PublicHandler
	Media     *handler.MediaHandler
	Contact   *handler.ContactHandler
	Views     *handler.ViewHandler
	Health    http.HandlerFunc

	AdminGuard *middleware.AdminGuard
	AuthMW     *middleware.AuthMiddleware
	RateLimit  *middleware.RateLimitMiddleware
	Global     *middleware.GlobalRateLimit
	CSRFGuard  *security.CSRFGuard
}

// New wires the full route table. Ordering matters: recovery outermost,
// then logging, CORS, the global throttle, and the admin guard ahead of
// all routing so no admin handler is reachable unauthenticated.
func New(deps Dependencies) http.Handler {
	cfg := deps.Config

	r := chi.NewRouter()
	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(deps.Global.Handler)
	r.Use(deps.AdminGuard.Handler)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	csrf := middleware.RequireCSRF(deps.CSRFGuard)

	r.Get("/health", deps.Health)

	r.Route("/api/v1", func(r chi.Router) {
		// CSRF gates every auth mutation ahead of rate limiting and the
		// handlers, so a cross-site post is refused before credentials are
		// checked or tokens touched.
		r.Route("/auth", func(r chi.Router) {
			r.With(csrf, deps.RateLimit.Limit("login", cfg.LoginRateLimit, cfg.LoginRateWindow)).
				Post("/login", deps.Auth.Login)
			r.With(csrf, deps.RateLimit.Limit("refresh", cfg.RefreshRateLimit, cfg.RefreshRateWindow)).
				Post("/refresh", deps.Auth.Refresh)
			r.With(csrf).Post("/logout", deps.Auth.Logout)
			r.Get("/session", deps.Auth.Session)
			r.With(deps.AuthMW.RequireAuth).Get("/me", deps.Auth.Me)
			r.Get("/csrf", deps.Auth.CSRFToken)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Route("/auth", func(r chi.Router) {
				r.With(csrf, deps.RateLimit.Limit("admin-login", cfg.LoginRateLimit, cfg.LoginRateWindow)).
					Post("/login", deps.AdminAuth.Login)
				r.With(csrf).Post("/logout", deps.AdminAuth.Logout)
				r.Get("/session", deps.AdminAuth.Session)
			})

			// The admin guard already authenticated these; CSRF still gates
			// every mutation.
			r.Route("/content/{entity}", func(r chi.Router) {
				r.Get("/", deps.Content.List)
				r.With(csrf).Post("/", deps.Content.Create)
				r.Get("/{id}", deps.Content.Get)
				r.With(csrf).Put("/{id}", deps.Content.Update)
				r.With(csrf).Delete("/{id}", deps.Content.Delete)
			})

			r.Get("/messages", deps.Contact.List)

			r.Route("/uploads", func(r chi.Router) {
				r.With(csrf).Post("/", deps.Media.Upload)
				r.With(csrf).Delete("/*", deps.Media.Delete)
			})
		})

		r.Route("/content/{entity}", func(r chi.Router) {
			r.Get("/", deps.Public.List)
			r.Get("/singleton", deps.Public.GetSingleton)
			r.Get("/{id}", deps.Public.Get)
		})

		// View pings consult the limiter inside the handler so an
		// exhausted budget skips counting instead of erroring.
		r.Post("/views/{entity}/{id}", deps.Views.Record)

		r.With(deps.RateLimit.Limit("contact", cfg.ContactRateLimit, cfg.ContactRateWindow), csrf).
			Post("/contact", deps.Contact.Submit)
	})

	r.Get("/media/*", deps.Media.Serve)

	// Placeholder admin pages; the real UI is served separately in front of
	// the API, these keep the guard's redirect semantics testable end to end.
	r.Get("/admin", adminPlaceholder)
	r.Get("/admin/*", adminPlaceholder)
	r.Get("/admin/login", adminLoginPlaceholder)

	return r
}

func adminPlaceholder(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte("<!doctype html><title>Admin</title><h1>Admin</h1>"))
}

func adminLoginPlaceholder(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte("<!doctype html><title>Admin Login</title><h1>Sign in</h1>"))
}
