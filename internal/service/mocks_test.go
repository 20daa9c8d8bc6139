package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/doctrot/site-server-go/internal/database"
	"github.com/doctrot/site-server-go/internal/email"
	"github.com/doctrot/site-server-go/internal/model"
	"github.com/doctrot/site-server-go/internal/repository"
	"github.com/doctrot/site-server-go/internal/sse"
)

type mockAdminRepo struct {
	mock.Mock
}

func (m *mockAdminRepo) FindByUsername(ctx context.Context, username string) (*model.AdminUser, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AdminUser), args.Error(1)
}

func (m *mockAdminRepo) Create(ctx context.Context, params model.CreateAdminUserParams) (*model.AdminUser, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AdminUser), args.Error(1)
}

func (m *mockAdminRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string, now time.Time) (bool, error) {
	args := m.Called(ctx, id, passwordHash, now)
	return args.Bool(0), args.Error(1)
}

func (m *mockAdminRepo) UpdateEmail(ctx context.Context, id int64, email string, now time.Time) (bool, error) {
	args := m.Called(ctx, id, email, now)
	return args.Bool(0), args.Error(1)
}

func (m *mockAdminRepo) CompletePasswordReset(ctx context.Context, id int64, passwordHash string, now time.Time) (bool, error) {
	args := m.Called(ctx, id, passwordHash, now)
	return args.Bool(0), args.Error(1)
}

func (m *mockAdminRepo) WithTx(database.DBTX) repository.AdminUserRepository {
	return m
}

type mockTokenRepo struct {
	mock.Mock
}

func (m *mockTokenRepo) FindByTokenHash(ctx context.Context, tokenHash string) (*model.PasswordResetToken, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PasswordResetToken), args.Error(1)
}

func (m *mockTokenRepo) Create(ctx context.Context, params model.CreatePasswordResetTokenParams) (*model.PasswordResetToken, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PasswordResetToken), args.Error(1)
}

func (m *mockTokenRepo) InvalidateUnused(ctx context.Context, adminUserID int64) (int64, error) {
	args := m.Called(ctx, adminUserID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockTokenRepo) MarkUsed(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockTokenRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockTokenRepo) WithTx(database.DBTX) repository.PasswordResetTokenRepository {
	return m
}

// fakeTx runs the callback directly, without a real transaction.
type fakeTx struct {
	calls int
}

func (f *fakeTx) WithTx(_ context.Context, fn database.TxFunc) error {
	f.calls++
	return fn(nil)
}

// plainHasher makes hashes readable in assertions.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) {
	return "h:" + password, nil
}

func (plainHasher) Verify(password, encoded string) bool {
	return encoded == "h:"+password
}

type failingHasher struct{ plainHasher }

func (failingHasher) Hash(string) (string, error) {
	return "", errors.New("entropy exhausted")
}

type fakeSender struct {
	mu   sync.Mutex
	err  error
	sent []sentEmail
}

type sentEmail struct {
	to     string
	params email.TemplateParams
}

func (f *fakeSender) Name() string { return "fake" }

func (f *fakeSender) Send(_ context.Context, to string, params email.TemplateParams) (*email.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentEmail{to: to, params: params})
	if f.err != nil {
		return nil, f.err
	}
	return &email.Result{Provider: "fake", Status: 200}, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	err    error
	events []sse.Event
	topics []string
}

func (f *fakePublisher) Publish(_ context.Context, topic string, event sse.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topics = append(f.topics, topic)
	f.events = append(f.events, event)
	return f.err
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func strPtr(s string) *string { return &s }
