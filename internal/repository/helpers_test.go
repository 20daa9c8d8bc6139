package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/doctrot/site-server-go/internal/database"
)

var testNow = time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Connect("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(context.Background()))
	return db
}

func strPtr(s string) *string { return &s }
