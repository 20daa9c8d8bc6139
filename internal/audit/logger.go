// Package audit writes security-relevant events to the structured log.
package audit

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"
)

type EventType string

const (
	EventLoginSuccess    EventType = "login_success"
	EventLoginFailure    EventType = "login_failure"
	EventLoginLocked     EventType = "login_locked"
	EventAdminInitialize EventType = "admin_initialize"
	EventPasswordChange  EventType = "password_change"
	EventEmailChange     EventType = "email_change"
	EventResetRequested  EventType = "reset_requested"
	EventResetRejected   EventType = "reset_rejected"
	EventResetEmailFail  EventType = "reset_email_failed"
	EventResetCompleted  EventType = "reset_completed"
	EventRateLimitExceed EventType = "rate_limit_exceeded"
	EventCSRFFailure     EventType = "csrf_failure"
	EventAuthFailure     EventType = "auth_failure"
)

// warnEvents are logged at warn level, everything else at info.
var warnEvents = map[EventType]bool{
	EventLoginFailure:    true,
	EventLoginLocked:     true,
	EventResetRejected:   true,
	EventResetEmailFail:  true,
	EventRateLimitExceed: true,
	EventCSRFFailure:     true,
	EventAuthFailure:     true,
}

// Event is one audit record. Details must never hold passwords, reset
// tokens or their hashes.
type Event struct {
	Type      EventType
	Username  string
	IP        string
	UserAgent string
	Details   map[string]any
}

func Log(ctx context.Context, event Event) {
	entry := log.Info()
	if warnEvents[event.Type] {
		entry = log.Warn()
	}

	entry = entry.Ctx(ctx).
		Str("audit", "security").
		Str("event_type", string(event.Type))

	if event.Username != "" {
		entry = entry.Str("username", event.Username)
	}
	if event.IP != "" {
		entry = entry.Str("ip", event.IP)
	}
	if event.UserAgent != "" {
		entry = entry.Str("user_agent", event.UserAgent)
	}
	if len(event.Details) > 0 {
		entry = entry.Fields(event.Details)
	}

	entry.Msg("security audit event")
}

// LogFromRequest fills the client address and user agent from r. The address
// is the one left in RemoteAddr by the RealIP middleware.
func LogFromRequest(r *http.Request, event Event) {
	event.IP = r.RemoteAddr
	event.UserAgent = r.UserAgent()
	Log(r.Context(), event)
}
