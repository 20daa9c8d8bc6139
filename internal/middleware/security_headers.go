package middleware

import (
	"net/http"
	"strings"
)

// SecurityHeadersMiddleware sets the browser hardening headers for the admin
// app and its API. Cover images may come from any https host or be inlined
// as data URLs.
type SecurityHeadersMiddleware struct {
	isProduction bool
	csp          string
}

func NewSecurityHeadersMiddleware(isProduction bool) *SecurityHeadersMiddleware {
	csp := strings.Join([]string{
		"default-src 'self'",
		"script-src 'self'",
		"style-src 'self' 'unsafe-inline'",
		"img-src 'self' data: blob: https:",
		"font-src 'self' data:",
		"connect-src 'self'",
		"frame-ancestors 'none'",
		"base-uri 'self'",
		"form-action 'self'",
	}, "; ")
	return &SecurityHeadersMiddleware{isProduction: isProduction, csp: csp}
}

func (m *SecurityHeadersMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cache-Control", "no-store")
		h.Set("Content-Security-Policy", m.csp)

		if m.isProduction {
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		next.ServeHTTP(w, r)
	})
}
