package httputil

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/doctrot/site-server-go/internal/errors"
)

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string              `json:"error"`
	Code    apperrors.ErrorCode `json:"code"`
	Details any                 `json:"details,omitempty"`
}

// WriteError renders err with the status mapped from its code. Errors that
// are not AppErrors become a generic internal error so their text never
// reaches the client.
func WriteError(w http.ResponseWriter, err error) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		appErr = apperrors.Internal("An unexpected error occurred")
	}

	WriteJSON(w, StatusFromCode(appErr.Code), ErrorResponse{
		Error:   appErr.Message,
		Code:    appErr.Code,
		Details: appErr.Details,
	})
}

var statusByCode = map[apperrors.ErrorCode]int{
	apperrors.ErrCodeValidation:        http.StatusBadRequest,
	apperrors.ErrCodeInvalidInput:      http.StatusBadRequest,
	apperrors.ErrCodeMissingRequired:   http.StatusBadRequest,
	apperrors.ErrCodeTokenInvalid:      http.StatusBadRequest,
	apperrors.ErrCodeUnauthorized:      http.StatusUnauthorized,
	apperrors.ErrCodeInvalidCredential: http.StatusUnauthorized,
	apperrors.ErrCodeForbidden:         http.StatusForbidden,
	apperrors.ErrCodeNotFound:          http.StatusNotFound,
	apperrors.ErrCodePayloadTooLarge:   http.StatusRequestEntityTooLarge,
	apperrors.ErrCodeRateLimitExceeded: http.StatusTooManyRequests,
	apperrors.ErrCodeExternal:          http.StatusBadGateway,
}

// StatusFromCode maps an error code to its HTTP status. Unknown, internal and
// database codes are all 500.
func StatusFromCode(code apperrors.ErrorCode) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
