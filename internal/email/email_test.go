package email

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResetParams(t *testing.T) {
	url := "https://doctrot.fr/admin?reset_token=abc"
	params := NewResetParams("owner@doctrot.fr", url, 10*time.Minute)

	assert.Equal(t, "owner@doctrot.fr", params.ToEmail)
	assert.Equal(t, "owner@doctrot.fr", params.UserEmail)
	assert.Equal(t, "owner@doctrot.fr", params.Email)
	assert.Equal(t, "Admin", params.ToName)
	assert.Equal(t, "10 minutes", params.ExpiresIn)
	assert.Equal(t, ResetSubject, params.Subject)
	assert.Contains(t, params.Message, url)
	assert.Contains(t, params.Message, "Ce lien expire dans 10 minutes")
}

func TestFormatTTL(t *testing.T) {
	assert.Equal(t, "1 minute", FormatTTL(30*time.Second))
	assert.Equal(t, "10 minutes", FormatTTL(10*time.Minute))
	assert.Equal(t, "1 heure", FormatTTL(time.Hour))
	assert.Equal(t, "2 heures", FormatTTL(2*time.Hour))
	assert.Equal(t, "90 minutes", FormatTTL(90*time.Minute))
}

func TestEmailJSSender_Send(t *testing.T) {
	t.Run("posts the expected payload", func(t *testing.T) {
		var got map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("OK"))
		}))
		defer server.Close()

		sender := NewEmailJSSender(EmailJSConfig{
			ServiceID:  "service_1",
			TemplateID: "template_1",
			PublicKey:  "public",
			PrivateKey: "private",
			Endpoint:   server.URL,
		})

		params := NewResetParams("typed@example.com", "https://doctrot.fr/admin?reset_token=t", 10*time.Minute)
		result, err := sender.Send(context.Background(), "stored@example.com", params)
		require.NoError(t, err)
		assert.Equal(t, "emailjs", result.Provider)
		assert.Equal(t, http.StatusOK, result.Status)

		assert.Equal(t, "service_1", got["service_id"])
		assert.Equal(t, "template_1", got["template_id"])
		assert.Equal(t, "public", got["user_id"])
		assert.Equal(t, "private", got["accessToken"])

		tp := got["template_params"].(map[string]any)
		assert.Equal(t, "stored@example.com", tp["to_email"])
		assert.Equal(t, "stored@example.com", tp["email"])
		assert.Equal(t, "https://doctrot.fr/admin?reset_token=t", tp["reset_url"])
		assert.Equal(t, "Doc'Trot Admin", tp["from_name"])
	})

	t.Run("omits access token when no private key", func(t *testing.T) {
		var raw []byte
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			buf := new(bytes.Buffer)
			_, _ = buf.ReadFrom(r.Body)
			raw = buf.Bytes()
		}))
		defer server.Close()

		sender := NewEmailJSSender(EmailJSConfig{ServiceID: "s", TemplateID: "t", PublicKey: "p", Endpoint: server.URL})
		_, err := sender.Send(context.Background(), "a@x.com", TemplateParams{})
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "accessToken")
	})

	t.Run("reports non-200 responses", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "The Public Key is invalid", http.StatusBadRequest)
		}))
		defer server.Close()

		sender := NewEmailJSSender(EmailJSConfig{Endpoint: server.URL})
		result, err := sender.Send(context.Background(), "a@x.com", TemplateParams{})
		require.Error(t, err)
		require.NotNil(t, result)
		assert.Equal(t, http.StatusBadRequest, result.Status)
	})

	t.Run("honours context cancellation", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		sender := NewEmailJSSender(EmailJSConfig{Endpoint: server.URL})
		_, err := sender.Send(ctx, "a@x.com", TemplateParams{})
		assert.Error(t, err)
	})
}

func TestLogSender_Send(t *testing.T) {
	var buf bytes.Buffer
	sender := NewLogSender(zerolog.New(&buf))

	result, err := sender.Send(context.Background(), "a@x.com", TemplateParams{Subject: "s", ResetURL: "https://x/admin?reset_token=live-secret-token"})
	assert.ErrorIs(t, err, ErrDeliveryDisabled)
	require.NotNil(t, result)
	assert.Equal(t, "log", result.Provider)
	assert.Contains(t, buf.String(), `"to":"a@x.com"`)
	assert.Contains(t, buf.String(), `"component":"email"`)
	assert.Contains(t, buf.String(), "reset_token=REDACTED")
	assert.NotContains(t, buf.String(), "live-secret-token")
}

func TestRedactResetURL(t *testing.T) {
	assert.Equal(t, "https://x/admin?reset_token=REDACTED", redactResetURL("https://x/admin?reset_token=abc"))
	assert.Equal(t, "https://x/admin", redactResetURL("https://x/admin"))
	assert.Equal(t, "", redactResetURL(""))
}
