package middleware

import (
	"net/http"
	"time"

	"github.com/doctrot/site-server-go/internal/audit"
	apperrors "github.com/doctrot/site-server-go/internal/errors"
	"github.com/doctrot/site-server-go/internal/httputil"
	"github.com/doctrot/site-server-go/internal/util"
)

const (
	CSRFCookieName = "csrf_token"
	CSRFHeaderName = "X-CSRF-Token"
	CSRFCookieTTL  = 24 * time.Hour
)

// CSRFMiddleware issues a csrf_token cookie scoped to /admin and requires
// every unsafe request to echo it in X-CSRF-Token.
type CSRFMiddleware struct {
	secure bool
}

func NewCSRFMiddleware(isProduction bool) *CSRFMiddleware {
	return &CSRFMiddleware{secure: isProduction}
}

func (m *CSRFMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := m.ensureToken(w, r)
		if err != nil {
			httputil.WriteError(w, apperrors.Internal("Failed to generate security token"))
			return
		}

		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		sent := r.Header.Get(CSRFHeaderName)
		if sent != "" && util.ConstantTimeEqual(token, sent) {
			next.ServeHTTP(w, r)
			return
		}

		audit.LogFromRequest(r, audit.Event{
			Type:    audit.EventCSRFFailure,
			Details: map[string]any{"path": r.URL.Path, "missing": sent == ""},
		})
		if sent == "" {
			httputil.WriteError(w, apperrors.Forbidden("Missing CSRF token"))
			return
		}
		httputil.WriteError(w, apperrors.Forbidden("Invalid CSRF token"))
	})
}

// ensureToken returns the request's token, minting and setting a fresh cookie
// when none was sent.
func (m *CSRFMiddleware) ensureToken(w http.ResponseWriter, r *http.Request) (string, error) {
	if c, err := r.Cookie(CSRFCookieName); err == nil && c.Value != "" {
		return c.Value, nil
	}

	token, err := util.GenerateToken()
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    token,
		Path:     "/admin",
		MaxAge:   int(CSRFCookieTTL.Seconds()),
		Secure:   m.secure,
		SameSite: http.SameSiteStrictMode,
	})
	return token, nil
}
