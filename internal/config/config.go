// Package config loads application configuration from a YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// envPrefix is the prefix for environment variable overrides.
// WALLETD_DATABASE__URL overrides database.url.
const envPrefix = "WALLETD_"

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Log      LogConfig      `koanf:"log"`
	JWT      JWTConfig      `koanf:"jwt"`
	Cookie   CookieConfig   `koanf:"cookie"`
	CORS     CORSConfig     `koanf:"cors"`
	Auth     AuthConfig     `koanf:"auth"`
	Payments PaymentsConfig `koanf:"payments"`
	Seed     SeedConfig     `koanf:"seed"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              string        `koanf:"port"`
	MetricsPort       string        `koanf:"metrics_port"`
	ReadTimeout       time.Duration `koanf:"read_timeout"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
	WriteTimeout      time.Duration `koanf:"write_timeout"`
	IdleTimeout       time.Duration `koanf:"idle_timeout"`
}

// DatabaseConfig contains PostgreSQL connection settings.
type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnectTimeout  time.Duration `koanf:"connect_timeout"`
	ConnectAttempts int           `koanf:"connect_attempts"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// JWTConfig contains token issuance settings.
type JWTConfig struct {
	SecretKey            string        `koanf:"secret_key"`
	AccessTokenDuration  time.Duration `koanf:"access_token_duration"`
	RefreshTokenDuration time.Duration `koanf:"refresh_token_duration"`
}

// CookieConfig contains auth cookie settings.
type CookieConfig struct {
	Secure bool   `koanf:"secure"`
	Domain string `koanf:"domain"`
}

// CORSConfig contains CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// AuthConfig contains authentication throttling and maintenance settings.
type AuthConfig struct {
	// LoginRatePerMinute limits login attempts per client IP.
	LoginRatePerMinute int `koanf:"login_rate_per_minute"`
	LoginBurst         int `koanf:"login_burst"`
	// TokenCleanupInterval is how often expired refresh tokens are pruned.
	TokenCleanupInterval time.Duration `koanf:"token_cleanup_interval"`
}

// PaymentsConfig contains payment webhook settings.
type PaymentsConfig struct {
	// SigningSecret is the shared secret appended to the signature base
	// string by the external payment system.
	SigningSecret string `koanf:"signing_secret"`
}

// SeedConfig controls creation of the default accounts on startup.
type SeedConfig struct {
	Enabled       bool   `koanf:"enabled"`
	AdminEmail    string `koanf:"admin_email"`
	UserEmail     string `koanf:"user_email"`
	DefaultPasswd string `koanf:"default_password"`
}

// Default returns the configuration defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              "8080",
			MetricsPort:       "9090",
			ReadTimeout:       15 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
			ConnectTimeout:  30 * time.Second,
			ConnectAttempts: 5,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		JWT: JWTConfig{
			AccessTokenDuration:  15 * time.Minute,
			RefreshTokenDuration: 7 * 24 * time.Hour,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
		Auth: AuthConfig{
			LoginRatePerMinute:   10,
			LoginBurst:           5,
			TokenCleanupInterval: time.Hour,
		},
		Seed: SeedConfig{
			Enabled:       true,
			AdminEmail:    "admin@example.com",
			UserEmail:     "user@example.com",
			DefaultPasswd: "1234",
		},
	}
}

// Load reads configuration from path (optional) and the environment.
// An empty path skips the file and uses defaults plus env overrides.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := Default()

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// Env overrides: WALLETD_SECTION__KEY -> section.key
	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		return strings.ReplaceAll(strings.ToLower(s), "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load env config: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks required settings.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("database.url is required")
	}
	if c.JWT.SecretKey == "" {
		return fmt.Errorf("jwt.secret_key is required")
	}
	if c.Payments.SigningSecret == "" {
		return fmt.Errorf("payments.signing_secret is required")
	}
	return nil
}

// PathFromEnv returns the config file path from WALLETD_CONFIG, or the
// fallback if the file exists, or empty.
func PathFromEnv(fallback string) string {
	if p := os.Getenv("WALLETD_CONFIG"); p != "" {
		return p
	}
	if _, err := os.Stat(fallback); err == nil {
		return fallback
	}
	return ""
}
