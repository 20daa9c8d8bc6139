package repository

import (
	"context"
	"time"

	"github.com/doctrot/site-server-go/internal/database"
	"github.com/doctrot/site-server-go/internal/model"
	"github.com/doctrot/site-server-go/internal/store"
)

const adminUsersTable = "admin_users"

type AdminUserRepository interface {
	FindByUsername(ctx context.Context, username string) (*model.AdminUser, error)
	Create(ctx context.Context, params model.CreateAdminUserParams) (*model.AdminUser, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string, now time.Time) (bool, error)
	UpdateEmail(ctx context.Context, id int64, email string, now time.Time) (bool, error)
	CompletePasswordReset(ctx context.Context, id int64, passwordHash string, now time.Time) (bool, error)
	WithTx(tx database.DBTX) AdminUserRepository
}

type adminUserRepo struct {
	table *store.Table[model.AdminUser]
}

func NewAdminUserRepository(db database.DBTX) AdminUserRepository {
	return &adminUserRepo{table: store.NewTable[model.AdminUser](db, adminUsersTable)}
}

func (r *adminUserRepo) WithTx(tx database.DBTX) AdminUserRepository {
	return &adminUserRepo{table: r.table.WithTx(tx)}
}

func (r *adminUserRepo) FindByUsername(ctx context.Context, username string) (*model.AdminUser, error) {
	return r.table.GetOne(ctx, store.Where(store.Eq("username", username)))
}

func (r *adminUserRepo) Create(ctx context.Context, params model.CreateAdminUserParams) (*model.AdminUser, error) {
	return r.table.Insert(ctx, store.Values{
		"username":       params.Username,
		"password_hash":  params.PasswordHash,
		"email_verified": false,
		"first_login":    true,
		"created_at":     params.Now,
		"updated_at":     params.Now,
	})
}

func (r *adminUserRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string, now time.Time) (bool, error) {
	return r.update(ctx, id, store.Values{
		"password_hash": passwordHash,
		"updated_at":    now,
	})
}

func (r *adminUserRepo) UpdateEmail(ctx context.Context, id int64, email string, now time.Time) (bool, error) {
	return r.update(ctx, id, store.Values{
		"email":          email,
		"email_verified": false,
		"first_login":    false,
		"updated_at":     now,
	})
}

// CompletePasswordReset stores the new hash and marks the email as proven,
// since the reset link could only have been read from that mailbox.
func (r *adminUserRepo) CompletePasswordReset(ctx context.Context, id int64, passwordHash string, now time.Time) (bool, error) {
	return r.update(ctx, id, store.Values{
		"password_hash":  passwordHash,
		"email_verified": true,
		"updated_at":     now,
	})
}

func (r *adminUserRepo) update(ctx context.Context, id int64, patch store.Values) (bool, error) {
	n, err := r.table.Update(ctx, store.Where(store.Eq("id", id)), patch)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
