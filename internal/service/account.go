package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/doctrot/site-server-go/internal/audit"
	"github.com/doctrot/site-server-go/internal/config"
	apperrors "github.com/doctrot/site-server-go/internal/errors"
	"github.com/doctrot/site-server-go/internal/metrics"
	"github.com/doctrot/site-server-go/internal/model"
	"github.com/doctrot/site-server-go/internal/repository"
	"github.com/doctrot/site-server-go/internal/store"
	"github.com/doctrot/site-server-go/internal/util"
)

type AccountOptions struct {
	// DefaultPassword is hashed into the account created on first run.
	DefaultPassword string
	// PresetHash, when set, is stored as-is instead of hashing DefaultPassword.
	PresetHash string
	// Lockout is optional. Nil disables failed-login counting.
	Lockout LoginLockout
}

// AccountService owns the single admin identity.
type AccountService struct {
	repo            repository.AdminUserRepository
	hasher          util.PasswordHasher
	defaultPassword string
	presetHash      string
	lockout         LoginLockout
	now             func() time.Time
}

func NewAccountService(repo repository.AdminUserRepository, hasher util.PasswordHasher, opts AccountOptions) *AccountService {
	return &AccountService{
		repo:            repo,
		hasher:          hasher,
		defaultPassword: opts.DefaultPassword,
		presetHash:      opts.PresetHash,
		lockout:         opts.Lockout,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// Initialize creates the admin account when none exists and reports whether
// it did. An existing account is never touched.
func (s *AccountService) Initialize(ctx context.Context) (bool, error) {
	existing, err := s.repo.FindByUsername(ctx, config.AdminUsername)
	if err != nil {
		return false, apperrors.Database(err)
	}
	if existing != nil {
		return false, nil
	}

	hash := s.presetHash
	if hash == "" {
		hash, err = s.hasher.Hash(s.defaultPassword)
		if err != nil {
			return false, apperrors.Wrap(apperrors.ErrCodeInternal, "Error hashing password", err)
		}
	}

	_, err = s.repo.Create(ctx, model.CreateAdminUserParams{
		Username:     config.AdminUsername,
		PasswordHash: hash,
		Now:          s.now(),
	})
	if err != nil {
		// Another request created it first.
		if store.IsUniqueViolation(err) {
			return false, nil
		}
		return false, apperrors.Database(err)
	}

	audit.Log(ctx, audit.Event{Type: audit.EventAdminInitialize, Username: config.AdminUsername})
	return true, nil
}

// Authenticate returns the account when username is the admin name and
// password verifies. Any other outcome is nil without error, except a locked
// username which is RATE_LIMIT_EXCEEDED.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*model.AdminUser, error) {
	if username != config.AdminUsername {
		metrics.RecordAuthAttempt(false)
		return nil, nil
	}

	if s.lockout != nil {
		if locked, retryAfter := s.lockout.IsLocked(ctx, username); locked {
			audit.Log(ctx, audit.Event{
				Type:     audit.EventLoginLocked,
				Username: username,
				Details:  map[string]interface{}{"retry_after_seconds": int(retryAfter.Seconds())},
			})
			return nil, apperrors.RateLimitExceeded().WithDetails(map[string]int{
				"retryAfterSeconds": int(retryAfter.Seconds()) + 1,
			})
		}
	}

	user, err := s.getOrInitialize(ctx)
	if err != nil {
		return nil, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		if s.lockout != nil {
			s.lockout.RecordFailure(ctx, username)
		}
		metrics.RecordAuthAttempt(false)
		return nil, nil
	}

	if s.lockout != nil {
		s.lockout.RecordSuccess(ctx, username)
	}
	metrics.RecordAuthAttempt(true)
	return user, nil
}

// GetAdmin returns the account, creating it first if it is missing.
func (s *AccountService) GetAdmin(ctx context.Context) (*model.AdminUser, error) {
	return s.getOrInitialize(ctx)
}

func (s *AccountService) getOrInitialize(ctx context.Context) (*model.AdminUser, error) {
	user, err := s.repo.FindByUsername(ctx, config.AdminUsername)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if user != nil {
		return user, nil
	}

	log.Warn().Msg("admin account missing, initializing")
	if _, err := s.Initialize(ctx); err != nil {
		return nil, err
	}

	user, err = s.repo.FindByUsername(ctx, config.AdminUsername)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if user == nil {
		return nil, apperrors.NotFound("Admin user")
	}
	return user, nil
}

func (s *AccountService) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	if err := ValidateNewPassword(newPassword); err != nil {
		return err
	}

	user, err := s.repo.FindByUsername(ctx, config.AdminUsername)
	if err != nil {
		return apperrors.Database(err)
	}
	if user == nil {
		return apperrors.NotFound("Admin user")
	}

	if !s.hasher.Verify(currentPassword, user.PasswordHash) {
		return apperrors.InvalidCredential("Current password incorrect")
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInternal, "Error hashing password", err)
	}

	ok, err := s.repo.UpdatePassword(ctx, user.ID, hash, s.now())
	if err != nil || !ok {
		return apperrors.Wrap(apperrors.ErrCodeDatabase, "Error updating password", err)
	}

	audit.Log(ctx, audit.Event{Type: audit.EventPasswordChange, Username: user.Username})
	return nil
}

// UpdateEmail stores a new recovery address. The address is unproven until a
// reset link sent to it is used.
func (s *AccountService) UpdateEmail(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return apperrors.MissingRequired("email")
	}

	user, err := s.repo.FindByUsername(ctx, config.AdminUsername)
	if err != nil {
		return apperrors.Database(err)
	}
	if user == nil {
		return apperrors.NotFound("Admin user")
	}

	ok, err := s.repo.UpdateEmail(ctx, user.ID, email, s.now())
	if err != nil {
		return apperrors.Database(err)
	}
	if !ok {
		return apperrors.NotFound("Admin user")
	}

	audit.Log(ctx, audit.Event{
		Type:     audit.EventEmailChange,
		Username: user.Username,
		Details:  map[string]interface{}{"email": util.MaskEmail(email)},
	})
	return nil
}

// ValidateNewPassword enforces the length bounds on a password being set.
// The upper bound is in bytes, matching what bcrypt can hash.
func ValidateNewPassword(password string) error {
	if len(password) < config.MinPasswordLength {
		return apperrors.ValidationError(fmt.Sprintf("Password must be at least %d characters", config.MinPasswordLength))
	}
	if len(password) > config.MaxPasswordBytes {
		return apperrors.ValidationError(fmt.Sprintf("Password must be at most %d bytes", config.MaxPasswordBytes))
	}
	return nil
}
