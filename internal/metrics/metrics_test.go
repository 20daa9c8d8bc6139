package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestCounters(t *testing.T) {
	before := counterValue(t, authAttempts.WithLabelValues("false"))
	RecordAuthAttempt(false)
	assert.Equal(t, before+1, counterValue(t, authAttempts.WithLabelValues("false")))

	before = counterValue(t, resetEvents.WithLabelValues(ResetIssued))
	RecordResetEvent(ResetIssued)
	assert.Equal(t, before+1, counterValue(t, resetEvents.WithLabelValues(ResetIssued)))

	before = counterValue(t, emailSends.WithLabelValues("log", "true"))
	RecordEmailSend("log", true)
	assert.Equal(t, before+1, counterValue(t, emailSends.WithLabelValues("log", "true")))

	before = counterValue(t, contactSubmissions)
	RecordContactSubmission()
	assert.Equal(t, before+1, counterValue(t, contactSubmissions))
}
