// Package config loads waypoint's configuration from the environment and
// validates it eagerly at startup (spec §5, §6 "Configuration"), via
// caarlos0/env struct tags.
package config

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration, loaded from environment
// variables.
type Config struct {
	// Build determines how strictly startup validation is enforced.
	// "release" fails fast on any missing or invalid toggle; "debug"
	// tolerates an ephemeral session-key fallback (spec §5).
	Build string `env:"WAYPOINT_BUILD" envDefault:"debug"`

	Host string `env:"WAYPOINT_HOST" envDefault:"0.0.0.0"`
	Port int    `env:"WAYPOINT_PORT" envDefault:"8080"`

	// DatabaseURL selects the durable startup mode when non-empty; empty
	// selects the in-memory fixture mode (spec §4.8, §9).
	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	MigrationsDir string `env:"MIGRATIONS_DIR" envDefault:"migrations"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Session
	SessionKeyFile      string        `env:"SESSION_KEY_FILE"`
	SessionMaxAge       time.Duration `env:"SESSION_MAX_AGE" envDefault:"24h"`
	SessionRefresh      time.Duration `env:"SESSION_REFRESH_WINDOW" envDefault:"2h"`
	SessionCookieSecure string        `env:"SESSION_COOKIE_SECURE" envDefault:"true"`
	SessionSameSite     string        `env:"SESSION_SAMESITE" envDefault:"lax"`

	// Idempotency
	IdempotencyTTLHours     int           `env:"IDEMPOTENCY_TTL_HOURS" envDefault:"24"`
	IdempotencyCleanupEvery time.Duration `env:"IDEMPOTENCY_CLEANUP_INTERVAL" envDefault:"1h"`

	// Enrichment worker
	EnrichmentSourceURL        string        `env:"ENRICHMENT_SOURCE_URL" envDefault:"https://overpass-api.de/api/interpreter"`
	EnrichmentAdmissionWidth   int           `env:"ENRICHMENT_ADMISSION_WIDTH" envDefault:"4"`
	EnrichmentQuotaPerMinute   int           `env:"ENRICHMENT_QUOTA_PER_MINUTE" envDefault:"30"`
	EnrichmentBreakerThreshold uint32        `env:"ENRICHMENT_BREAKER_THRESHOLD" envDefault:"5"`
	EnrichmentBreakerCooldown  time.Duration `env:"ENRICHMENT_BREAKER_COOLDOWN" envDefault:"30s"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config from env: %w", err)
	}
	return cfg, nil
}

// ListenAddr returns the address the HTTP server should listen on.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsRelease reports whether startup validation should run under release
// strictness.
func (c *Config) IsRelease() bool {
	return strings.EqualFold(c.Build, "release")
}

// SameSite parses SessionSameSite into an http.SameSite value.
func (c *Config) SameSite() (http.SameSite, error) {
	switch strings.ToLower(c.SessionSameSite) {
	case "strict":
		return http.SameSiteStrictMode, nil
	case "lax", "":
		return http.SameSiteLaxMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	default:
		return 0, fmt.Errorf("invalid SESSION_SAMESITE %q", c.SessionSameSite)
	}
}

// CookieSecure parses SessionCookieSecure into a bool.
func (c *Config) CookieSecure() (bool, error) {
	switch strings.ToLower(c.SessionCookieSecure) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no", "":
		return false, nil
	default:
		return false, fmt.Errorf("invalid SESSION_COOKIE_SECURE %q", c.SessionCookieSecure)
	}
}

// ReadSessionKey resolves the signing key: reads SessionKeyFile if set,
// else (debug builds only) falls back to an ephemeral generated secret.
// Release builds require SessionKeyFile to be set and at least 64 bytes.
func (c *Config) ReadSessionKey(generateDevSecret func() string) (string, error) {
	if c.SessionKeyFile == "" {
		if c.IsRelease() {
			return "", fmt.Errorf("SESSION_KEY_FILE is required in a release build")
		}
		return generateDevSecret(), nil
	}

	raw, err := os.ReadFile(c.SessionKeyFile)
	if err != nil {
		return "", fmt.Errorf("reading session key file: %w", err)
	}
	key := strings.TrimSpace(string(raw))

	if c.IsRelease() && len(key) < 64 {
		return "", fmt.Errorf("session key must be at least 64 bytes in a release build, got %d", len(key))
	}
	return key, nil
}

// Validate performs the eager startup checks spec §5/§6 require: cookie
// policy consistency (SameSite=None implies Secure) and release-build
// strictness on the session key and CORS wildcarding.
func (c *Config) Validate() error {
	sameSite, err := c.SameSite()
	if err != nil {
		return err
	}
	secure, err := c.CookieSecure()
	if err != nil {
		return err
	}
	if sameSite == http.SameSiteNoneMode && !secure {
		return fmt.Errorf("SESSION_SAMESITE=none requires SESSION_COOKIE_SECURE=true")
	}

	if c.IsRelease() {
		if c.SessionKeyFile == "" {
			return fmt.Errorf("SESSION_KEY_FILE is required in a release build")
		}
		if !secure {
			return fmt.Errorf("SESSION_COOKIE_SECURE must be true in a release build")
		}
		for _, origin := range c.CORSAllowedOrigins {
			if origin == "*" {
				return fmt.Errorf("CORS_ALLOWED_ORIGINS must not be wildcarded in a release build")
			}
		}
	}

	if c.IdempotencyTTLHours <= 0 {
		return fmt.Errorf("IDEMPOTENCY_TTL_HOURS must be positive")
	}
	if c.EnrichmentAdmissionWidth <= 0 {
		return fmt.Errorf("ENRICHMENT_ADMISSION_WIDTH must be positive")
	}
	if c.EnrichmentQuotaPerMinute <= 0 {
		return fmt.Errorf("ENRICHMENT_QUOTA_PER_MINUTE must be positive")
	}

	return nil
}
