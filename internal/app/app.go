package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"go-portfolio-cms/internal/config"
	"go-portfolio-cms/internal/content"
	"go-portfolio-cms/internal/database"
	"go-portfolio-cms/internal/email"
	"go-portfolio-cms/internal/handler"
	"go-portfolio-cms/internal/middleware"
	"go-portfolio-cms/internal/model"
	"go-portfolio-cms/internal/observability"
	"go-portfolio-cms/internal/ratelimit"
	"go-portfolio-cms/internal/repository"
	"go-portfolio-cms/internal/router"
	"go-portfolio-cms/internal/security"
	"go-portfolio-cms/internal/service"
	"go-portfolio-cms/internal/storage"
)

type App struct {
	cfg      *config.Config
	db       *database.DB
	server   *http.Server
	tokens   *repository.TokenRepository
	contacts *repository.ContactRepository
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err := observability.InitSentry(cfg.SentryDSN, cfg.Environment); err != nil {
		return nil, fmt.Errorf("init sentry: %w", err)
	}

	db, err := database.New(ctx, cfg.DatabaseURL, database.PoolOptions{
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: cfg.DBMaxConnLifetime,
		MaxConnIdleTime: cfg.DBMaxConnIdleTime,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	uploadStore, err := storage.New(cfg.UploadRoot)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init upload storage: %w", err)
	}

	users := repository.NewUserRepository(db.Pool)
	tokens := repository.NewTokenRepository(db.Pool)
	contents := repository.NewContentRepository(db.Pool)
	contacts := repository.NewContactRepository(db.Pool)

	if err := seedAdmin(ctx, users, cfg); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed admin user: %w", err)
	}

	authSvc, err := service.NewAuthService(
		cfg.JWTAccessSecret,
		cfg.AdminSessionSecret,
		cfg.AccessTokenTTL,
		cfg.RefreshTokenTTL,
		cfg.AdminSessionTTL,
		users,
		tokens,
	)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init auth service: %w", err)
	}

	contentSvc := service.NewContentService(content.MustRegistry(), contents)
	mediaSvc := service.NewMediaService(uploadStore, cfg.AllowedMIMETypes, cfg.ThumbnailMaxEdge, cfg.PublicBaseURL+"/media")

	var sender email.Sender
	if cfg.ResendAPIKey != "" && cfg.ContactTo != "" {
		sender = email.NewResendSender(cfg.ResendAPIKey, cfg.ContactFrom, cfg.ContactTo)
	} else {
		sender = email.NoopSender{}
	}
	contactSvc := service.NewContactService(contacts, sender)

	csrfGuard := security.NewCSRFGuard(cfg.CSRFSecret, cfg.CSRFTokenTTL, cfg.CookieSecure)
	rateLimitMW := middleware.NewRateLimitMiddleware(ratelimit.NewMemoryStore())

	deps := router.Dependencies{
		Config: cfg,

		Auth:      handler.NewAuthHandler(authSvc, csrfGuard, cfg.CookieSecure),
		AdminAuth: handler.NewAdminAuthHandler(authSvc, cfg.CookieSecure),
		Content:   handler.NewContentHandler(contentSvc),
		Public:    handler.NewPublicHandler(contentSvc),
		Media:     handler.NewMediaHandler(mediaSvc, cfg.MaxUploadSize),
		Contact:   handler.NewContactHandler(contactSvc),
		Views:     handler.NewViewHandler(contentSvc, rateLimitMW, cfg.ViewRateLimit, cfg.ViewRateWindow),
		Health:    healthHandler(db),

		AdminGuard: middleware.NewAdminGuard(authSvc, authSvc),
		AuthMW:     middleware.NewAuthMiddleware(authSvc),
		RateLimit:  rateLimitMW,
		Global:     middleware.NewGlobalRateLimit(cfg.RateLimitRPM),
		CSRFGuard:  csrfGuard,
	}

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router.New(deps),
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{cfg: cfg, db: db, server: server, tokens: tokens, contacts: contacts}, nil
}

// Run serves until SIGINT/SIGTERM, then drains in-flight requests.
func (a *App) Run() error {
	maintCtx, stopMaint := context.WithCancel(context.Background())
	defer stopMaint()
	go a.maintenanceLoop(maintCtx)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", a.server.Addr, "environment", a.cfg.Environment)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		a.db.Close()
		observability.FlushSentry()
		return err
	case sig := <-stop:
		slog.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	err := a.server.Shutdown(ctx)
	a.db.Close()
	observability.FlushSentry()
	return err
}

// maintenanceLoop prunes expired refresh tokens and, when a retention is
// configured, old contact messages.
func (a *App) maintenanceLoop(ctx context.Context) {
	interval := a.cfg.MaintenanceInterval
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if removed, err := a.tokens.DeleteExpired(ctx); err != nil {
			slog.Error("token cleanup failed", "error", err)
		} else if removed > 0 {
			slog.Info("pruned expired refresh tokens", "count", removed)
		}

		if a.cfg.ContactRetention > 0 {
			cutoff := time.Now().UTC().Add(-a.cfg.ContactRetention)
			if removed, err := a.contacts.DeleteOlderThan(ctx, cutoff); err != nil {
				slog.Error("contact message cleanup failed", "error", err)
			} else if removed > 0 {
				slog.Info("pruned old contact messages", "count", removed)
			}
		}
	}
}

// seedAdmin creates the first admin account when the user table is empty
// and ADMIN_PASSWORD is set. Existing installations are never touched.
func seedAdmin(ctx context.Context, users *repository.UserRepository, cfg *config.Config) error {
	if cfg.AdminPassword == "" {
		return nil
	}

	count, err := users.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), 12)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	admin := model.User{
		ID:           uuid.NewString(),
		Email:        cfg.AdminEmail,
		Name:         "Administrator",
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := users.Create(ctx, admin); err != nil {
		return err
	}

	slog.Info("seeded initial admin user", "email", cfg.AdminEmail)
	return nil
}

func healthHandler(db *database.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Health(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"degraded"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
