package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/doctrot/site-server-go/internal/errors"
	"github.com/doctrot/site-server-go/internal/httputil"
	"github.com/doctrot/site-server-go/internal/model"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	httputil.WriteJSON(w, status, data)
}

// decodeJSON reads the request body into dst. Any failure is reported as an
// INVALID_INPUT error suitable for httputil.WriteError.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return apperrors.InvalidInput("body", "request body too large")
		case errors.Is(err, io.EOF):
			return apperrors.InvalidInput("body", "request body is empty")
		default:
			return apperrors.InvalidInput("body", "malformed JSON")
		}
	}
	return nil
}

func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.InvalidInput("id", "must be a positive integer")
	}
	return id, nil
}

// adminView is the account as the admin app sees it, with the derived state.
type adminView struct {
	*model.AdminUser
	Status          model.AccountStatus `json:"status"`
	NeedsEmailSetup bool                `json:"needsEmailSetup"`
}

func newAdminView(user *model.AdminUser) adminView {
	return adminView{
		AdminUser:       user,
		Status:          user.Status(),
		NeedsEmailSetup: user.NeedsEmailSetup(),
	}
}

type messageResponse struct {
	Message string `json:"message"`
}
