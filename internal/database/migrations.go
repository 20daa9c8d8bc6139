package database

import (
	"context"
	"fmt"

	"github.com/doctrot/site-server-go/internal/config"
)

var postgresMigrations = []string{
	`CREATE TABLE IF NOT EXISTS admin_users (
		id BIGSERIAL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		email TEXT,
		email_verified BOOLEAN NOT NULL DEFAULT FALSE,
		first_login BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS password_reset_tokens (
		id BIGSERIAL PRIMARY KEY,
		admin_user_id BIGINT NOT NULL REFERENCES admin_users(id) ON DELETE CASCADE,
		token_hash TEXT NOT NULL UNIQUE,
		expires_at TIMESTAMPTZ NOT NULL,
		used BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_password_reset_tokens_admin_unused
		ON password_reset_tokens (admin_user_id) WHERE used = FALSE`,

	`CREATE INDEX IF NOT EXISTS idx_password_reset_tokens_expires_at
		ON password_reset_tokens (expires_at)`,

	`CREATE TABLE IF NOT EXISTS contact_submissions (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		phone TEXT,
		subject TEXT,
		message TEXT NOT NULL,
		is_read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_contact_submissions_created_at
		ON contact_submissions (created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS blogs (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		excerpt TEXT NOT NULL,
		content TEXT NOT NULL,
		image_url TEXT NOT NULL,
		author TEXT NOT NULL DEFAULT 'Doc''Trot Team',
		date TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT 'Général',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_blogs_date ON blogs (date DESC, id DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_blogs_category ON blogs (category)`,
}

var sqliteMigrations = []string{
	`CREATE TABLE IF NOT EXISTS admin_users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		email TEXT,
		email_verified BOOLEAN NOT NULL DEFAULT 0,
		first_login BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS password_reset_tokens (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		admin_user_id INTEGER NOT NULL REFERENCES admin_users(id) ON DELETE CASCADE,
		token_hash TEXT NOT NULL UNIQUE,
		expires_at DATETIME NOT NULL,
		used BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE INDEX IF NOT EXISTS idx_password_reset_tokens_admin_user_id
		ON password_reset_tokens (admin_user_id, used)`,

	`CREATE INDEX IF NOT EXISTS idx_password_reset_tokens_expires_at
		ON password_reset_tokens (expires_at)`,

	`CREATE TABLE IF NOT EXISTS contact_submissions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		phone TEXT,
		subject TEXT,
		message TEXT NOT NULL,
		is_read BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE INDEX IF NOT EXISTS idx_contact_submissions_created_at
		ON contact_submissions (created_at)`,

	`CREATE TABLE IF NOT EXISTS blogs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		excerpt TEXT NOT NULL,
		content TEXT NOT NULL,
		image_url TEXT NOT NULL,
		author TEXT NOT NULL DEFAULT 'Doc''Trot Team',
		date TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT 'Général',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE INDEX IF NOT EXISTS idx_blogs_date ON blogs (date, id)`,
	`CREATE INDEX IF NOT EXISTS idx_blogs_category ON blogs (category)`,
}

// Migrate creates the site tables if they do not exist yet. Statements are
// idempotent so it runs on every start.
func (db *DB) Migrate(ctx context.Context) error {
	var statements []string
	switch db.DriverName() {
	case config.DriverPostgres:
		statements = postgresMigrations
	case config.DriverSQLite:
		statements = sqliteMigrations
	default:
		return fmt.Errorf("no migrations for driver %q", db.DriverName())
	}

	for i, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}
