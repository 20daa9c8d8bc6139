package config

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:                  8080,
		DatabaseDriver:        DriverPostgres,
		DatabaseURL:           "postgres://localhost/doctrot",
		SiteOrigin:            "https://doctrot.fr",
		AdminDefaultPassword:  "123123",
		PasswordHashAlgorithm: HashBcrypt,
		ResetTokenTTLMinutes:  10,
	}
}

func TestConfigMethods(t *testing.T) {
	t.Run("Addr returns formatted port", func(t *testing.T) {
		cfg := &Config{Port: 3000}
		assert.Equal(t, ":3000", cfg.Addr())
	})

	t.Run("ResetTokenTTL converts minutes to duration", func(t *testing.T) {
		cfg := &Config{ResetTokenTTLMinutes: 10}
		assert.Equal(t, 10*time.Minute, cfg.ResetTokenTTL())
	})

	t.Run("LoginLockoutDuration converts minutes to duration", func(t *testing.T) {
		cfg := &Config{LoginLockoutMinutes: 15}
		assert.Equal(t, 15*time.Minute, cfg.LoginLockoutDuration())
	})

	t.Run("EmailJSConfigured requires service, template and public key", func(t *testing.T) {
		cfg := &Config{EmailJSServiceID: "svc", EmailJSTemplateID: "tpl"}
		assert.False(t, cfg.EmailJSConfigured())

		cfg.EmailJSPublicKey = "pub"
		assert.True(t, cfg.EmailJSConfigured())
	})
}

func TestValidate(t *testing.T) {
	t.Run("accepts defaults", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate(false))
	})

	t.Run("rejects unknown database driver", func(t *testing.T) {
		cfg := validConfig()
		cfg.DatabaseDriver = "mysql"
		assert.Error(t, cfg.Validate(false))
	})

	t.Run("rejects unknown hash algorithm", func(t *testing.T) {
		cfg := validConfig()
		cfg.PasswordHashAlgorithm = "md5"
		assert.Error(t, cfg.Validate(false))
	})

	t.Run("rejects password hash preset in unknown format", func(t *testing.T) {
		cfg := validConfig()
		cfg.AdminPasswordHash = "MTIzMTIzc2FsdF9kb2NfdHJvdF8yMDI1"
		assert.Error(t, cfg.Validate(false))
	})

	t.Run("accepts bcrypt and argon2id presets", func(t *testing.T) {
		cfg := validConfig()
		cfg.AdminPasswordHash = "$2a$12$abcdefghijklmnopqrstuv"
		assert.NoError(t, cfg.Validate(false))

		cfg.AdminPasswordHash = "$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA"
		assert.NoError(t, cfg.Validate(false))
	})

	t.Run("rejects relative site origin", func(t *testing.T) {
		cfg := validConfig()
		cfg.SiteOrigin = "doctrot.fr"
		assert.Error(t, cfg.Validate(false))
	})

	t.Run("rejects non-positive token ttl", func(t *testing.T) {
		cfg := validConfig()
		cfg.ResetTokenTTLMinutes = 0
		assert.Error(t, cfg.Validate(false))
	})

	t.Run("rejects short default password", func(t *testing.T) {
		cfg := validConfig()
		cfg.AdminDefaultPassword = "abc"
		assert.Error(t, cfg.Validate(false))
	})

	t.Run("rejects default password bcrypt would truncate", func(t *testing.T) {
		cfg := validConfig()
		cfg.AdminDefaultPassword = strings.Repeat("p", MaxPasswordBytes+1)
		assert.Error(t, cfg.Validate(false))
	})

	t.Run("production only warns on risky settings", func(t *testing.T) {
		cfg := validConfig()
		cfg.SiteOrigin = "http://doctrot.fr"
		cfg.ResetLinkFallback = true
		assert.NoError(t, cfg.Validate(true))
	})
}

func TestLoad(t *testing.T) {
	t.Run("loads config with defaults", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/test")
		t.Setenv("SITE_ORIGIN", "https://doctrot.fr")
		unsetEnv(t, "PORT")
		unsetEnv(t, "LOG_LEVEL")
		unsetEnv(t, "DATABASE_DRIVER")
		unsetEnv(t, "RESET_TOKEN_TTL_MINUTES")
		unsetEnv(t, "ADMIN_DEFAULT_PASSWORD")
		unsetEnv(t, "REDIS_URL")
		unsetEnv(t, "PASSWORD_HASH_ALGORITHM")
		unsetEnv(t, "RESET_LINK_FALLBACK")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 8080, cfg.Port)
		assert.Equal(t, "postgres://localhost/test", cfg.DatabaseURL)
		assert.Equal(t, DriverPostgres, cfg.DatabaseDriver)
		assert.Equal(t, "", cfg.RedisURL)
		assert.Equal(t, 10, cfg.ResetTokenTTLMinutes)
		assert.Equal(t, "123123", cfg.AdminDefaultPassword)
		assert.Equal(t, HashBcrypt, cfg.PasswordHashAlgorithm)
		assert.True(t, cfg.ResetLinkFallback)
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("loads custom values", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "file:doctrot.db")
		t.Setenv("DATABASE_DRIVER", "sqlite")
		t.Setenv("SITE_ORIGIN", "https://doctrot.fr")
		t.Setenv("PORT", "3000")
		t.Setenv("LOG_LEVEL", "debug")
		t.Setenv("CORS_ALLOWED_ORIGINS", "https://doctrot.fr,https://www.doctrot.fr")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 3000, cfg.Port)
		assert.Equal(t, DriverSQLite, cfg.DatabaseDriver)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, []string{"https://doctrot.fr", "https://www.doctrot.fr"}, cfg.CORSAllowedOrigins)
	})

	t.Run("fails without required DATABASE_URL", func(t *testing.T) {
		t.Setenv("SITE_ORIGIN", "https://doctrot.fr")
		unsetEnv(t, "DATABASE_URL")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("fails without required SITE_ORIGIN", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/test")
		unsetEnv(t, "SITE_ORIGIN")

		_, err := Load()
		assert.Error(t, err)
	})
}

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}
