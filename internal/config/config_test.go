package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: "9000"
database:
  url: postgres://localhost:5432/walletd
jwt:
  secret_key: file-secret
  access_token_duration: 30m
payments:
  signing_secret: webhook-secret
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "postgres://localhost:5432/walletd", cfg.Database.URL)
	assert.Equal(t, "file-secret", cfg.JWT.SecretKey)
	assert.Equal(t, 30*time.Minute, cfg.JWT.AccessTokenDuration)
	// Defaults survive for keys the file does not set
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshTokenDuration)
	assert.True(t, cfg.Seed.Enabled)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
database:
  url: postgres://localhost:5432/walletd
jwt:
  secret_key: file-secret
payments:
  signing_secret: webhook-secret
`)

	t.Setenv("WALLETD_JWT__SECRET_KEY", "env-secret")
	t.Setenv("WALLETD_SERVER__PORT", "7000")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "env-secret", cfg.JWT.SecretKey)
	assert.Equal(t, "7000", cfg.Server.Port)
}

func TestLoad_EnvOnly(t *testing.T) {
	t.Setenv("WALLETD_DATABASE__URL", "postgres://db:5432/walletd")
	t.Setenv("WALLETD_JWT__SECRET_KEY", "env-secret")
	t.Setenv("WALLETD_PAYMENTS__SIGNING_SECRET", "webhook-secret")

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "postgres://db:5432/walletd", cfg.Database.URL)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")

	assert.Error(t, err)
}

func TestValidate_RequiredSettings(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing database url", func(c *Config) { c.Database.URL = "" }},
		{"missing jwt secret", func(c *Config) { c.JWT.SecretKey = "" }},
		{"missing signing secret", func(c *Config) { c.Payments.SigningSecret = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Database.URL = "postgres://localhost/walletd"
			cfg.JWT.SecretKey = "secret"
			cfg.Payments.SigningSecret = "secret"

			tt.mutate(cfg)

			assert.Error(t, cfg.Validate())
		})
	}
}

func TestPathFromEnv(t *testing.T) {
	t.Setenv("WALLETD_CONFIG", "/etc/walletd/config.yaml")

	assert.Equal(t, "/etc/walletd/config.yaml", PathFromEnv("missing.yaml"))
}

func TestPathFromEnv_FallbackMissing(t *testing.T) {
	t.Setenv("WALLETD_CONFIG", "")

	assert.Equal(t, "", PathFromEnv(filepath.Join(t.TempDir(), "missing.yaml")))
}
