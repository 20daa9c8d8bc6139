package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/doctrot/site-server-go/internal/errors"
)

func TestWriteError(t *testing.T) {
	t.Run("maps app error code to status", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteError(rec, apperrors.TokenInvalid())

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, apperrors.ErrCodeTokenInvalid, resp.Code)
		assert.Equal(t, "Invalid or expired reset link", resp.Error)
	})

	t.Run("does not leak database cause", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteError(rec, apperrors.Database(errors.New("pq: relation admin_users does not exist")))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "admin_users")
	})

	t.Run("wraps unknown errors as internal", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteError(rec, errors.New("secret detail"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "secret detail")
		assert.Contains(t, rec.Body.String(), string(apperrors.ErrCodeInternal))
	})
}

func TestStatusFromCode(t *testing.T) {
	tests := []struct {
		code   apperrors.ErrorCode
		status int
	}{
		{apperrors.ErrCodeValidation, http.StatusBadRequest},
		{apperrors.ErrCodeTokenInvalid, http.StatusBadRequest},
		{apperrors.ErrCodeInvalidCredential, http.StatusUnauthorized},
		{apperrors.ErrCodeUnauthorized, http.StatusUnauthorized},
		{apperrors.ErrCodeNotFound, http.StatusNotFound},
		{apperrors.ErrCodeForbidden, http.StatusForbidden},
		{apperrors.ErrCodePayloadTooLarge, http.StatusRequestEntityTooLarge},
		{apperrors.ErrCodeRateLimitExceeded, http.StatusTooManyRequests},
		{apperrors.ErrCodeExternal, http.StatusBadGateway},
		{apperrors.ErrCodeDatabase, http.StatusInternalServerError},
		{apperrors.ErrorCode("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(string(tc.code), func(t *testing.T) {
			assert.Equal(t, tc.status, StatusFromCode(tc.code))
		})
	}
}
