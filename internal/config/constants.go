package config

import "time"

// Database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Password hash algorithms
const (
	HashBcrypt   = "bcrypt"
	HashArgon2id = "argon2id"
)

// Database connection pool settings
const (
	DBMaxOpenConns    = 25
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 5 * time.Minute
)

// HTTP server timeouts
const (
	ServerRequestTimeout  = 60 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Database ping timeout for health checks
const DBPingTimeout = 5 * time.Second

// Background job intervals
const CleanupJobInterval = 5 * time.Minute

// Admin account
const (
	AdminUsername     = "admin"
	MinPasswordLength = 6
	// bcrypt ignores everything past 72 bytes.
	MaxPasswordBytes = 72
)

// Request body limits. Blog posts carry cover images as data URLs.
const (
	PublicMaxBodySize = 64 << 10
	AdminMaxBodySize  = 10 << 20
)

// Per-IP rate limits
const (
	LoginRateLimit          = 10
	ForgotPasswordRateLimit = 3
	ContactRateLimit        = 5
	IPRateLimitWindow       = 10 * time.Minute
	PublicAPIRateLimit      = 120
)

// Email delivery
const EmailSendTimeout = 10 * time.Second
