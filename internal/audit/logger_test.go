package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })
	return &buf
}

func TestLog(t *testing.T) {
	buf := captureLog(t)

	Log(context.Background(), Event{
		Type:     EventPasswordChange,
		Username: "admin",
		Details:  map[string]interface{}{"attempt": 2, "via": "settings"},
	})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "security", entry["audit"])
	assert.Equal(t, "password_change", entry["event_type"])
	assert.Equal(t, "admin", entry["username"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, float64(2), entry["attempt"])
	assert.Equal(t, "settings", entry["via"])
}

func TestLog_FailuresAreWarnings(t *testing.T) {
	buf := captureLog(t)

	Log(context.Background(), Event{Type: EventLoginFailure})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
}

func TestLogFromRequest(t *testing.T) {
	buf := captureLog(t)

	r := httptest.NewRequest("POST", "/admin/api/login", nil)
	r.RemoteAddr = "203.0.113.7"
	r.Header.Set("User-Agent", "test-agent")

	LogFromRequest(r, Event{Type: EventRateLimitExceed})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "203.0.113.7", entry["ip"])
	assert.Equal(t, "test-agent", entry["user_agent"])
}
