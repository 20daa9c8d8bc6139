package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	DefaultEmailJSEndpoint = "https://api.emailjs.com/api/v1.0/email/send"
	maxErrorBody           = 512
)

type EmailJSConfig struct {
	ServiceID  string
	TemplateID string
	PublicKey  string
	PrivateKey string
	Endpoint   string
	Timeout    time.Duration
}

// EmailJSSender posts to the EmailJS REST API. The private key is sent as
// accessToken when set, which is required for server-side calls in strict
// mode.
type EmailJSSender struct {
	cfg    EmailJSConfig
	client *http.Client
}

func NewEmailJSSender(cfg EmailJSConfig) *EmailJSSender {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEmailJSEndpoint
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &EmailJSSender{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

func (s *EmailJSSender) Name() string {
	return "emailjs"
}

type emailJSRequest struct {
	ServiceID      string         `json:"service_id"`
	TemplateID     string         `json:"template_id"`
	UserID         string         `json:"user_id"`
	AccessToken    string         `json:"accessToken,omitempty"`
	TemplateParams TemplateParams `json:"template_params"`
}

func (s *EmailJSSender) Send(ctx context.Context, to string, params TemplateParams) (*Result, error) {
	params.ToEmail = to
	params.UserEmail = to
	params.Email = to

	body, err := json.Marshal(emailJSRequest{
		ServiceID:      s.cfg.ServiceID,
		TemplateID:     s.cfg.TemplateID,
		UserID:         s.cfg.PublicKey,
		AccessToken:    s.cfg.PrivateKey,
		TemplateParams: params,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		log.Error().
			Err(err).
			Dur("elapsed", elapsed).
			Msg("emailjs request error")
		return nil, fmt.Errorf("emailjs request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		log.Error().
			Int("status", resp.StatusCode).
			Str("response", string(detail)).
			Dur("elapsed", elapsed).
			Msg("emailjs send failed")
		return &Result{Provider: s.Name(), Status: resp.StatusCode},
			fmt.Errorf("emailjs send failed with status %d", resp.StatusCode)
	}

	log.Info().
		Int("status", resp.StatusCode).
		Dur("elapsed", elapsed).
		Msg("emailjs send successful")

	return &Result{Provider: s.Name(), Status: resp.StatusCode}, nil
}
