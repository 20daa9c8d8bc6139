package repository

import (
	"context"
	"time"

	"github.com/doctrot/site-server-go/internal/database"
	"github.com/doctrot/site-server-go/internal/model"
	"github.com/doctrot/site-server-go/internal/store"
)

const passwordResetTokensTable = "password_reset_tokens"

type PasswordResetTokenRepository interface {
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.PasswordResetToken, error)
	Create(ctx context.Context, params model.CreatePasswordResetTokenParams) (*model.PasswordResetToken, error)
	InvalidateUnused(ctx context.Context, adminUserID int64) (int64, error)
	MarkUsed(ctx context.Context, id int64) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	WithTx(tx database.DBTX) PasswordResetTokenRepository
}

type passwordResetTokenRepo struct {
	table *store.Table[model.PasswordResetToken]
}

func NewPasswordResetTokenRepository(db database.DBTX) PasswordResetTokenRepository {
	return &passwordResetTokenRepo{table: store.NewTable[model.PasswordResetToken](db, passwordResetTokensTable)}
}

func (r *passwordResetTokenRepo) WithTx(tx database.DBTX) PasswordResetTokenRepository {
	return &passwordResetTokenRepo{table: r.table.WithTx(tx)}
}

// FindByTokenHash returns the token row regardless of its state. Callers
// decide validity against their own clock.
func (r *passwordResetTokenRepo) FindByTokenHash(ctx context.Context, tokenHash string) (*model.PasswordResetToken, error) {
	return r.table.GetOne(ctx, store.Where(store.Eq("token_hash", tokenHash)))
}

func (r *passwordResetTokenRepo) Create(ctx context.Context, params model.CreatePasswordResetTokenParams) (*model.PasswordResetToken, error) {
	return r.table.Insert(ctx, store.Values{
		"admin_user_id": params.AdminUserID,
		"token_hash":    params.TokenHash,
		"expires_at":    params.ExpiresAt,
		"used":          false,
		"created_at":    params.Now,
	})
}

// InvalidateUnused marks every outstanding token of the account as used.
func (r *passwordResetTokenRepo) InvalidateUnused(ctx context.Context, adminUserID int64) (int64, error) {
	return r.table.Update(ctx,
		store.Where(store.Eq("admin_user_id", adminUserID), store.Eq("used", false)),
		store.Values{"used": true},
	)
}

// MarkUsed flips used only if it is still false, so exactly one caller wins.
func (r *passwordResetTokenRepo) MarkUsed(ctx context.Context, id int64) (bool, error) {
	n, err := r.table.Update(ctx,
		store.Where(store.Eq("id", id), store.Eq("used", false)),
		store.Values{"used": true},
	)
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *passwordResetTokenRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return r.table.Delete(ctx, store.Where(store.Lte("expires_at", now)))
}
