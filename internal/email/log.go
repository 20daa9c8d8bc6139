package email

import (
	"context"
	"net/url"

	"github.com/rs/zerolog"
)

// LogSender records that a message would have been sent without delivering
// it. It is the stand-in when no provider is configured. Send always
// returns ErrDeliveryDisabled so callers fall back to showing the link.
type LogSender struct {
	logger zerolog.Logger
}

func NewLogSender(logger zerolog.Logger) *LogSender {
	return &LogSender{logger: logger.With().Str("component", "email").Logger()}
}

func (s *LogSender) Name() string {
	return "log"
}

func (s *LogSender) Send(_ context.Context, to string, params TemplateParams) (*Result, error) {
	s.logger.Info().
		Str("to", to).
		Str("subject", params.Subject).
		Str("reset_url", redactResetURL(params.ResetURL)).
		Str("expires_in", params.ExpiresIn).
		Msg("email delivery disabled, message not sent")
	return &Result{Provider: s.Name()}, ErrDeliveryDisabled
}

// redactResetURL replaces the reset_token query value so the log never
// carries a usable link.
func redactResetURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "[unparseable]"
	}
	q := u.Query()
	if q.Has("reset_token") {
		q.Set("reset_token", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}
