package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/doctrot/site-server-go/internal/database"
	"github.com/doctrot/site-server-go/internal/repository"
	"github.com/doctrot/site-server-go/internal/util"
)

// testEnv wires the services against an in-memory SQLite database.
type testEnv struct {
	db       *database.DB
	clock    *fakeClock
	sender   *fakeSender
	users    repository.AdminUserRepository
	tokens   repository.PasswordResetTokenRepository
	accounts *AccountService
	resets   *PasswordResetService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.Connect("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate(context.Background()))

	hasher := util.NewBcryptHasher(bcrypt.MinCost)
	clock := newFakeClock()
	sender := &fakeSender{}

	users := repository.NewAdminUserRepository(db.DB)
	tokens := repository.NewPasswordResetTokenRepository(db.DB)

	accounts := NewAccountService(users, hasher, AccountOptions{DefaultPassword: "123123"})
	accounts.now = clock.Now

	resets := NewPasswordResetService(db, users, tokens, hasher, ResetOptions{
		SiteOrigin: "https://doctrot.fr/",
		Sender:     sender,
	})
	resets.now = clock.Now

	return &testEnv{
		db:       db,
		clock:    clock,
		sender:   sender,
		users:    users,
		tokens:   tokens,
		accounts: accounts,
		resets:   resets,
	}
}

// withEmail initializes the account and sets its recovery address.
func (e *testEnv) withEmail(t *testing.T, addr string) {
	t.Helper()
	ctx := context.Background()
	_, err := e.accounts.Initialize(ctx)
	require.NoError(t, err)
	require.NoError(t, e.accounts.UpdateEmail(ctx, addr))
}
