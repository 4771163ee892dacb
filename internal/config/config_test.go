package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		ServerPort:         "8080",
		DatabaseURL:        "postgres://localhost/portfolio",
		JWTAccessSecret:    "access-secret",
		AdminSessionSecret: "admin-secret",
		CSRFSecret:         "csrf-secret",
		AccessTokenTTL:     15 * time.Minute,
		RefreshTokenTTL:    168 * time.Hour,
		AdminSessionTTL:    168 * time.Hour,
		UploadRoot:         "./data/uploads",
		MaxUploadSize:      1 << 20,
	}
}

func TestValidateAcceptsDistinctSecrets(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidateRejectsSharedSessionSecrets(t *testing.T) {
	cfg := validConfig()
	cfg.AdminSessionSecret = cfg.JWTAccessSecret

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must differ")
}

func TestValidateRejectsCSRFSecretSharedWithEitherDomain(t *testing.T) {
	cfg := validConfig()
	cfg.CSRFSecret = cfg.JWTAccessSecret
	require.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.CSRFSecret = cfg.AdminSessionSecret
	require.Error(t, cfg.Validate())
}

func TestValidateRequiresCoreSettings(t *testing.T) {
	for _, mutate := range []func(*Config){
		func(c *Config) { c.DatabaseURL = "" },
		func(c *Config) { c.JWTAccessSecret = "" },
		func(c *Config) { c.AdminSessionSecret = "" },
		func(c *Config) { c.CSRFSecret = "" },
		func(c *Config) { c.ServerPort = "" },
		func(c *Config) { c.MaxUploadSize = 0 },
		func(c *Config) { c.UploadRoot = " " },
		func(c *Config) { c.AccessTokenTTL = 0 },
	} {
		cfg := validConfig()
		mutate(cfg)
		assert.Error(t, cfg.Validate())
	}
}
