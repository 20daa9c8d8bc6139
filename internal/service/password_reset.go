package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/doctrot/site-server-go/internal/audit"
	"github.com/doctrot/site-server-go/internal/config"
	"github.com/doctrot/site-server-go/internal/database"
	"github.com/doctrot/site-server-go/internal/email"
	apperrors "github.com/doctrot/site-server-go/internal/errors"
	"github.com/doctrot/site-server-go/internal/metrics"
	"github.com/doctrot/site-server-go/internal/model"
	"github.com/doctrot/site-server-go/internal/repository"
	"github.com/doctrot/site-server-go/internal/store"
	"github.com/doctrot/site-server-go/internal/util"
)

const tokenInsertAttempts = 3

// TxRunner runs fn in one database transaction. *database.DB satisfies it.
type TxRunner interface {
	WithTx(ctx context.Context, fn database.TxFunc) error
}

type ResetOptions struct {
	SiteOrigin string
	TTL        time.Duration
	Sender     email.Sender
}

// ResetEmailResult reports how a reset link left the server. ResetURL is
// always set so the caller can fall back to showing it when Sent is false.
type ResetEmailResult struct {
	Sent     bool
	Provider string
	ResetURL string
}

// PasswordResetService issues, checks and consumes single-use reset tokens.
// At most one unused token per account is ever outstanding.
type PasswordResetService struct {
	db         TxRunner
	users      repository.AdminUserRepository
	tokens     repository.PasswordResetTokenRepository
	hasher     util.PasswordHasher
	sender     email.Sender
	siteOrigin string
	ttl        time.Duration
	now        func() time.Time
	generate   func(time.Time) (string, error)
}

func NewPasswordResetService(
	db TxRunner,
	users repository.AdminUserRepository,
	tokens repository.PasswordResetTokenRepository,
	hasher util.PasswordHasher,
	opts ResetOptions,
) *PasswordResetService {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &PasswordResetService{
		db:         db,
		users:      users,
		tokens:     tokens,
		hasher:     hasher,
		sender:     opts.Sender,
		siteOrigin: strings.TrimRight(opts.SiteOrigin, "/"),
		ttl:        ttl,
		now:        func() time.Time { return time.Now().UTC() },
		generate:   util.GenerateResetToken,
	}
}

// CreateResetToken returns a fresh token when email matches the stored
// recovery address, ignoring case. It returns "" without error when no
// address is set or the address differs.
func (s *PasswordResetService) CreateResetToken(ctx context.Context, emailAddr string) (string, error) {
	token, _, err := s.issue(ctx, emailAddr)
	return token, err
}

func (s *PasswordResetService) issue(ctx context.Context, emailAddr string) (string, *model.AdminUser, error) {
	user, err := s.users.FindByUsername(ctx, config.AdminUsername)
	if err != nil {
		return "", nil, apperrors.Database(err)
	}
	if user == nil || !user.HasEmail() {
		return "", nil, nil
	}
	if !strings.EqualFold(strings.TrimSpace(emailAddr), strings.TrimSpace(*user.Email)) {
		return "", nil, nil
	}

	now := s.now()

	// Best-effort sweep outside the transaction; it deletes expired rows only.
	if n, err := s.tokens.DeleteExpired(ctx, now); err != nil {
		log.Warn().Err(err).Msg("expired reset token cleanup failed")
	} else if n > 0 {
		log.Debug().Int64("deleted", n).Msg("expired reset tokens deleted")
	}

	for attempt := 1; attempt <= tokenInsertAttempts; attempt++ {
		token, err := s.generate(now)
		if err != nil {
			return "", nil, apperrors.Wrap(apperrors.ErrCodeInternal, "Error generating token", err)
		}

		err = s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
			tokens := s.tokens.WithTx(tx)
			if _, err := tokens.InvalidateUnused(ctx, user.ID); err != nil {
				return err
			}
			_, err := tokens.Create(ctx, model.CreatePasswordResetTokenParams{
				AdminUserID: user.ID,
				TokenHash:   util.HashToken(token),
				ExpiresAt:   now.Add(s.ttl),
				Now:         now,
			})
			return err
		})
		if err == nil {
			metrics.RecordResetEvent(metrics.ResetIssued)
			return token, user, nil
		}
		if !store.IsUniqueViolation(err) {
			return "", nil, apperrors.Database(err)
		}
		log.Warn().Int("attempt", attempt).Msg("reset token collision, regenerating")
	}

	return "", nil, apperrors.Internal("Could not issue a unique reset token")
}

// VerifyToken returns the owning account id of a token that is unused and
// not yet expired. It never changes the token.
func (s *PasswordResetService) VerifyToken(ctx context.Context, token string) (int64, error) {
	row, err := s.lookup(ctx, token)
	if err != nil {
		return 0, err
	}
	return row.AdminUserID, nil
}

func (s *PasswordResetService) lookup(ctx context.Context, token string) (*model.PasswordResetToken, error) {
	if token == "" {
		return nil, apperrors.TokenInvalid()
	}
	row, err := s.tokens.FindByTokenHash(ctx, util.HashToken(token))
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if row == nil || !row.IsValid(s.now()) {
		return nil, apperrors.TokenInvalid()
	}
	return row, nil
}

// ResetPassword consumes token and sets the new password. Marking the token
// used and updating the account commit together: a failed account update
// leaves the token usable.
func (s *PasswordResetService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := ValidateNewPassword(newPassword); err != nil {
		return err
	}

	row, err := s.lookup(ctx, token)
	if err != nil {
		metrics.RecordResetEvent(metrics.ResetRejected)
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInternal, "Error hashing password", err)
	}

	err = s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		claimed, err := s.tokens.WithTx(tx).MarkUsed(ctx, row.ID)
		if err != nil {
			return err
		}
		if !claimed {
			// A concurrent submission consumed it first.
			return apperrors.TokenInvalid()
		}

		updated, err := s.users.WithTx(tx).CompletePasswordReset(ctx, row.AdminUserID, hash, s.now())
		if err != nil {
			return err
		}
		if !updated {
			return apperrors.NotFound("Admin user")
		}
		return nil
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			metrics.RecordResetEvent(metrics.ResetRejected)
			return appErr
		}
		return apperrors.Database(err)
	}

	metrics.RecordResetEvent(metrics.ResetCompleted)
	audit.Log(ctx, audit.Event{Type: audit.EventResetCompleted, Username: config.AdminUsername})
	return nil
}

// SendResetEmail issues a token for emailAddr and mails the link to the
// stored recovery address. A delivery failure is not an error: the result
// carries the link with Sent false.
func (s *PasswordResetService) SendResetEmail(ctx context.Context, emailAddr string) (*ResetEmailResult, error) {
	metrics.RecordResetEvent(metrics.ResetRequested)

	token, user, err := s.issue(ctx, emailAddr)
	if err != nil {
		return nil, err
	}
	if token == "" {
		metrics.RecordResetEvent(metrics.ResetRejected)
		audit.Log(ctx, audit.Event{
			Type:     audit.EventResetRejected,
			Username: config.AdminUsername,
			Details:  map[string]interface{}{"email": util.MaskEmail(emailAddr)},
		})
		return nil, apperrors.InvalidCredential("No reset link can be sent to this address")
	}

	resetURL := BuildResetURL(s.siteOrigin, token)
	recipient := *user.Email
	result := &ResetEmailResult{ResetURL: resetURL}

	audit.Log(ctx, audit.Event{
		Type:     audit.EventResetRequested,
		Username: user.Username,
		Details:  map[string]interface{}{"email": util.MaskEmail(recipient)},
	})

	if s.sender == nil {
		return result, nil
	}
	result.Provider = s.sender.Name()

	sendCtx, cancel := context.WithTimeout(ctx, config.EmailSendTimeout)
	defer cancel()

	params := email.NewResetParams(recipient, resetURL, s.ttl)
	_, err = s.sender.Send(sendCtx, recipient, params)
	if errors.Is(err, email.ErrDeliveryDisabled) {
		log.Info().Str("provider", s.sender.Name()).Msg("reset email not sent, returning link to caller")
		return result, nil
	}
	if err != nil {
		metrics.RecordEmailSend(s.sender.Name(), false)
		log.Warn().Err(err).Str("provider", s.sender.Name()).Msg("reset email delivery failed")
		audit.Log(ctx, audit.Event{
			Type:     audit.EventResetEmailFail,
			Username: user.Username,
			Details:  map[string]interface{}{"provider": s.sender.Name()},
		})
		return result, nil
	}

	metrics.RecordEmailSend(s.sender.Name(), true)
	result.Sent = true
	return result, nil
}

// CleanupExpired deletes tokens whose expiry has passed.
func (s *PasswordResetService) CleanupExpired(ctx context.Context) (int64, error) {
	return s.tokens.DeleteExpired(ctx, s.now())
}

// BuildResetURL returns <origin>/admin?reset_token=<token>, query-escaped.
func BuildResetURL(siteOrigin, token string) string {
	return strings.TrimRight(siteOrigin, "/") + "/admin?reset_token=" + url.QueryEscape(token)
}
