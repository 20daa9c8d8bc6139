package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

var knownWeakPasswords = []string{
	"123123", "admin", "password", "change-me", "123456",
}

type Config struct {
	Port                  int      `env:"PORT" envDefault:"8080"`
	Production            bool     `env:"PRODUCTION" envDefault:"false"`
	DatabaseDriver        string   `env:"DATABASE_DRIVER" envDefault:"postgres"`
	DatabaseURL           string   `env:"DATABASE_URL,required"`
	RedisURL              string   `env:"REDIS_URL"`
	LogLevel              string   `env:"LOG_LEVEL" envDefault:"info"`
	SiteOrigin            string   `env:"SITE_ORIGIN,required"`
	StaticDir             string   `env:"STATIC_DIR" envDefault:"static"`
	CORSAllowedOrigins    []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	AdminDefaultPassword  string   `env:"ADMIN_DEFAULT_PASSWORD" envDefault:"123123"`
	AdminPasswordHash     string   `env:"ADMIN_PASSWORD_HASH"`
	PasswordHashAlgorithm string   `env:"PASSWORD_HASH_ALGORITHM" envDefault:"bcrypt"`
	ResetTokenTTLMinutes  int      `env:"RESET_TOKEN_TTL_MINUTES" envDefault:"10"`
	ResetLinkFallback     bool     `env:"RESET_LINK_FALLBACK" envDefault:"true"`
	EmailJSServiceID      string   `env:"EMAILJS_SERVICE_ID"`
	EmailJSTemplateID     string   `env:"EMAILJS_TEMPLATE_ID"`
	EmailJSPublicKey      string   `env:"EMAILJS_PUBLIC_KEY"`
	EmailJSPrivateKey     string   `env:"EMAILJS_PRIVATE_KEY"`
	LoginMaxFailures      int      `env:"LOGIN_MAX_FAILURES" envDefault:"5"`
	LoginLockoutMinutes   int      `env:"LOGIN_LOCKOUT_MINUTES" envDefault:"15"`
}

func (c *Config) ResetTokenTTL() time.Duration {
	return time.Duration(c.ResetTokenTTLMinutes) * time.Minute
}

func (c *Config) LoginLockoutDuration() time.Duration {
	return time.Duration(c.LoginLockoutMinutes) * time.Minute
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// EmailJSConfigured reports whether all credentials needed to send through
// EmailJS are present.
func (c *Config) EmailJSConfigured() bool {
	return c.EmailJSServiceID != "" && c.EmailJSTemplateID != "" && c.EmailJSPublicKey != ""
}

func (c *Config) Validate(isProduction bool) error {
	switch c.DatabaseDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("DATABASE_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.DatabaseDriver)
	}

	switch c.PasswordHashAlgorithm {
	case HashBcrypt, HashArgon2id:
	default:
		return fmt.Errorf("PASSWORD_HASH_ALGORITHM must be %q or %q, got %q", HashBcrypt, HashArgon2id, c.PasswordHashAlgorithm)
	}

	if c.AdminPasswordHash != "" && !isSupportedHash(c.AdminPasswordHash) {
		return fmt.Errorf("ADMIN_PASSWORD_HASH must be a bcrypt or argon2id hash (generate with: go run scripts/hash-password.go <password>)")
	}

	origin, err := url.Parse(c.SiteOrigin)
	if err != nil || origin.Scheme == "" || origin.Host == "" {
		return fmt.Errorf("SITE_ORIGIN must be an absolute URL such as https://doctrot.fr")
	}

	if c.ResetTokenTTLMinutes <= 0 {
		return fmt.Errorf("RESET_TOKEN_TTL_MINUTES must be positive")
	}

	if len(c.AdminDefaultPassword) < MinPasswordLength {
		return fmt.Errorf("ADMIN_DEFAULT_PASSWORD must be at least %d characters", MinPasswordLength)
	}
	if len(c.AdminDefaultPassword) > MaxPasswordBytes {
		return fmt.Errorf("ADMIN_DEFAULT_PASSWORD must be at most %d bytes", MaxPasswordBytes)
	}

	if isProduction {
		if c.AdminPasswordHash == "" && isWeakPassword(c.AdminDefaultPassword) {
			log.Warn().Msg("ADMIN_DEFAULT_PASSWORD is a well-known default in production: change the admin password after first login")
		}
		if origin.Scheme != "https" {
			log.Warn().Str("origin", c.SiteOrigin).Msg("SITE_ORIGIN is not https in production: reset links will travel in clear text")
		}
		if c.ResetLinkFallback {
			log.Warn().Msg("RESET_LINK_FALLBACK is enabled in production: reset links are shown in-band when email delivery fails")
		}
		if !c.EmailJSConfigured() {
			log.Warn().Msg("EmailJS credentials are empty in production: reset emails will only be logged")
		}
		if c.RedisURL == "" {
			log.Warn().Msg("REDIS_URL is empty in production: rate limits and lockouts are per-instance")
		} else if strings.HasPrefix(c.RedisURL, "redis://") {
			log.Warn().Msg("REDIS_URL uses redis:// (not TLS) in production: consider using rediss://")
		}
		if c.DatabaseDriver == DriverSQLite {
			log.Warn().Msg("DATABASE_DRIVER is sqlite in production: data lives on the local disk")
		}
	}

	return nil
}

func isSupportedHash(hash string) bool {
	for _, prefix := range []string{"$2a$", "$2b$", "$2y$", "$argon2id$"} {
		if strings.HasPrefix(hash, prefix) {
			return true
		}
	}
	return false
}

func isWeakPassword(value string) bool {
	for _, weak := range knownWeakPasswords {
		if value == weak {
			return true
		}
	}
	return false
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
