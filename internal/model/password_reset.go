package model

import (
	"time"
)

// PasswordResetToken is a single-use credential proving control of the admin
// recovery email. Only the SHA-256 of the token is stored.
type PasswordResetToken struct {
	ID          int64     `db:"id" json:"id"`
	AdminUserID int64     `db:"admin_user_id" json:"adminUserId"`
	TokenHash   string    `db:"token_hash" json:"-"`
	ExpiresAt   time.Time `db:"expires_at" json:"expiresAt"`
	Used        bool      `db:"used" json:"used"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

type CreatePasswordResetTokenParams struct {
	AdminUserID int64
	TokenHash   string
	ExpiresAt   time.Time
	Now         time.Time
}

// IsExpired reports whether now is at or past the expiry instant.
func (t *PasswordResetToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// IsValid checks if the token can still authorize a reset at now.
func (t *PasswordResetToken) IsValid(now time.Time) bool {
	return !t.Used && !t.IsExpired(now)
}
