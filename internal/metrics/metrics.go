package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "doctrot_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
	authAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "doctrot_admin_auth_attempts_total",
			Help: "Admin authentication attempts by outcome",
		},
		[]string{"success"},
	)
	resetEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "doctrot_password_reset_events_total",
			Help: "Password reset flow events by stage",
		},
		[]string{"stage"},
	)
	emailSends = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "doctrot_email_sends_total",
			Help: "Outgoing email attempts by provider and outcome",
		},
		[]string{"provider", "success"},
	)
	contactSubmissions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "doctrot_contact_submissions_total",
			Help: "Contact form submissions stored",
		},
	)
)

// Reset flow stages.
const (
	ResetRequested = "requested"
	ResetRejected  = "rejected"
	ResetIssued    = "issued"
	ResetCompleted = "completed"
)

func RecordAuthAttempt(success bool) {
	authAttempts.WithLabelValues(strconv.FormatBool(success)).Inc()
}

func RecordResetEvent(stage string) {
	resetEvents.WithLabelValues(stage).Inc()
}

func RecordEmailSend(provider string, success bool) {
	emailSends.WithLabelValues(provider, strconv.FormatBool(success)).Inc()
}

func RecordContactSubmission() {
	contactSubmissions.Inc()
}
