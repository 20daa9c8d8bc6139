package middleware

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/doctrot/site-server-go/internal/audit"
	apperrors "github.com/doctrot/site-server-go/internal/errors"
	"github.com/doctrot/site-server-go/internal/httputil"
	"github.com/doctrot/site-server-go/internal/model"
)

type contextKey string

const AdminContextKey contextKey = "admin"

func GetAdmin(ctx context.Context) *model.AdminUser {
	if user, ok := ctx.Value(AdminContextKey).(*model.AdminUser); ok {
		return user
	}
	return nil
}

// Authenticator verifies admin credentials. *service.AccountService
// satisfies it.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*model.AdminUser, error)
}

// AdminAuthMiddleware checks HTTP Basic credentials on every request. There
// is no session: the admin app resends the credentials each time.
type AdminAuthMiddleware struct {
	auth Authenticator
}

func NewAdminAuthMiddleware(auth Authenticator) *AdminAuthMiddleware {
	return &AdminAuthMiddleware{auth: auth}
}

func (m *AdminAuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok {
			httputil.WriteError(w, apperrors.Unauthorized("Missing credentials"))
			return
		}

		user, err := m.auth.Authenticate(r.Context(), username, password)
		if err != nil {
			if !apperrors.HasCode(err, apperrors.ErrCodeRateLimitExceeded) {
				log.Error().Err(err).Msg("admin auth: authentication error")
			}
			httputil.WriteError(w, err)
			return
		}

		if user == nil {
			audit.LogFromRequest(r, audit.Event{Type: audit.EventAuthFailure, Username: username})
			httputil.WriteError(w, apperrors.InvalidCredential("Invalid credentials"))
			return
		}

		ctx := context.WithValue(r.Context(), AdminContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
