package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort              string
	ServerReadHeaderTimeout time.Duration
	ServerWriteTimeout      time.Duration
	ServerIdleTimeout       time.Duration
	RequestTimeout          time.Duration

	DatabaseURL       string
	DBMaxConns        int32
	DBMinConns        int32
	DBMaxConnLifetime time.Duration
	DBMaxConnIdleTime time.Duration

	// JWTAccessSecret signs user access tokens; AdminSessionSecret signs
	// admin session tokens. They are separate trust domains and must never
	// share a value.
	JWTAccessSecret    string
	AdminSessionSecret string
	CSRFSecret         string

	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	AdminSessionTTL time.Duration
	CSRFTokenTTL    time.Duration

	CookieSecure bool
	CORSOrigins  []string
	RateLimitRPM int

	LoginRateLimit     int
	LoginRateWindow    time.Duration
	RefreshRateLimit   int
	RefreshRateWindow  time.Duration
	ContactRateLimit   int
	ContactRateWindow  time.Duration
	ViewRateLimit      int
	ViewRateWindow     time.Duration

	UploadRoot       string
	MaxUploadSize    int64
	AllowedMIMETypes []string
	ThumbnailMaxEdge int

	ResendAPIKey  string
	ContactFrom   string
	ContactTo     string
	PublicBaseURL string

	// ContactRetention of zero keeps messages forever.
	ContactRetention    time.Duration
	MaintenanceInterval time.Duration

	SentryDSN   string
	Environment string

	AdminEmail    string
	AdminPassword string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:              getEnv("SERVER_PORT", "8080"),
		ServerReadHeaderTimeout: getDuration("SERVER_READ_HEADER_TIMEOUT", 10*time.Second),
		ServerWriteTimeout:      getDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		ServerIdleTimeout:       getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		RequestTimeout:          getDuration("REQUEST_TIMEOUT", 30*time.Second),

		DatabaseURL:       strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DBMaxConns:        int32(getInt("DB_MAX_CONNS", 10)),
		DBMinConns:        int32(getInt("DB_MIN_CONNS", 2)),
		DBMaxConnLifetime: getDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
		DBMaxConnIdleTime: getDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),

		JWTAccessSecret:    strings.TrimSpace(os.Getenv("JWT_ACCESS_SECRET")),
		AdminSessionSecret: strings.TrimSpace(os.Getenv("ADMIN_SESSION_SECRET")),
		CSRFSecret:         strings.TrimSpace(os.Getenv("CSRF_SECRET")),

		AccessTokenTTL:  getDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL: getDuration("REFRESH_TOKEN_TTL", 168*time.Hour),
		AdminSessionTTL: getDuration("ADMIN_SESSION_TTL", 168*time.Hour),
		CSRFTokenTTL:    getDuration("CSRF_TOKEN_TTL", 8*time.Hour),

		CookieSecure: getBool("COOKIE_SECURE", true),
		CORSOrigins:  splitCSV(getEnv("CORS_ORIGINS", "*")),
		RateLimitRPM: getInt("RATE_LIMIT_RPM", 300),

		LoginRateLimit:    getInt("LOGIN_RATE_LIMIT", 10),
		LoginRateWindow:   getDuration("LOGIN_RATE_WINDOW", 15*time.Minute),
		RefreshRateLimit:  getInt("REFRESH_RATE_LIMIT", 30),
		RefreshRateWindow: getDuration("REFRESH_RATE_WINDOW", 15*time.Minute),
		ContactRateLimit:  getInt("CONTACT_RATE_LIMIT", 5),
		ContactRateWindow: getDuration("CONTACT_RATE_WINDOW", 10*time.Minute),
		ViewRateLimit:     getInt("VIEW_RATE_LIMIT", 500),
		ViewRateWindow:    getDuration("VIEW_RATE_WINDOW", time.Minute),

		UploadRoot:       getEnv("UPLOAD_ROOT", "./data/uploads"),
		MaxUploadSize:    getInt64("MAX_UPLOAD_SIZE", 25*1024*1024),
		AllowedMIMETypes: splitCSV(getEnv("ALLOWED_MIME_TYPES", "image/jpeg,image/png,image/gif,image/webp,video/mp4,application/pdf")),
		ThumbnailMaxEdge: getInt("THUMBNAIL_MAX_EDGE", 320),

		ResendAPIKey:  strings.TrimSpace(os.Getenv("RESEND_API_KEY")),
		ContactFrom:   getEnv("CONTACT_FROM", "noreply@localhost"),
		ContactTo:     strings.TrimSpace(os.Getenv("CONTACT_TO")),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),

		ContactRetention:    getDuration("CONTACT_RETENTION", 0),
		MaintenanceInterval: getDuration("MAINTENANCE_INTERVAL", time.Hour),

		SentryDSN:   strings.TrimSpace(os.Getenv("SENTRY_DSN")),
		Environment: getEnv("ENVIRONMENT", "development"),

		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@localhost"),
		AdminPassword: strings.TrimSpace(os.Getenv("ADMIN_PASSWORD")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.JWTAccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}

	if c.AdminSessionSecret == "" {
		return fmt.Errorf("ADMIN_SESSION_SECRET is required")
	}

	if c.CSRFSecret == "" {
		return fmt.Errorf("CSRF_SECRET is required")
	}

	// The two session systems are intentionally isolated; a shared secret
	// would collapse them into one trust domain.
	if c.JWTAccessSecret == c.AdminSessionSecret {
		return fmt.Errorf("JWT_ACCESS_SECRET and ADMIN_SESSION_SECRET must differ")
	}

	if c.CSRFSecret == c.JWTAccessSecret || c.CSRFSecret == c.AdminSessionSecret {
		return fmt.Errorf("CSRF_SECRET must differ from the token signing secrets")
	}

	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT cannot be empty")
	}

	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must be positive")
	}

	if strings.TrimSpace(c.UploadRoot) == "" {
		return fmt.Errorf("UPLOAD_ROOT cannot be empty")
	}

	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 || c.AdminSessionTTL <= 0 {
		return fmt.Errorf("token TTLs must be positive")
	}

	return nil
}

func getEnv(key string, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}

	return v
}

func getInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getInt64(key string, fallback int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}

	return v
}

func getBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return v
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}

	return out
}
