package model

import (
	"time"
)

// AdminUser is the singleton administrator account.
type AdminUser struct {
	ID            int64     `db:"id" json:"id"`
	Username      string    `db:"username" json:"username"`
	PasswordHash  string    `db:"password_hash" json:"-"`
	Email         *string   `db:"email" json:"email"`
	EmailVerified bool      `db:"email_verified" json:"emailVerified"`
	FirstLogin    bool      `db:"first_login" json:"firstLogin"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}

type CreateAdminUserParams struct {
	Username     string
	PasswordHash string
	Now          time.Time
}

// HasEmail reports whether a non-empty recovery email is set.
func (u *AdminUser) HasEmail() bool {
	return u.Email != nil && *u.Email != ""
}

// NeedsEmailSetup reports whether login must route to the email setup step
// before the dashboard.
func (u *AdminUser) NeedsEmailSetup() bool {
	return u.FirstLogin && !u.HasEmail()
}

// Status derives the account state from its flags.
func (u *AdminUser) Status() AccountStatus {
	switch {
	case u.FirstLogin:
		return AccountStatusBootstrapping
	case !u.HasEmail() || !u.EmailVerified:
		return AccountStatusAwaitingEmailSetup
	default:
		return AccountStatusActive
	}
}
