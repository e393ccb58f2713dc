package metrics

import (
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, service, outcome string) float64 {
	t.Helper()

	counter, err := LinkChecksTotal.GetMetricWithLabelValues(service, outcome)
	require.NoError(t, err)

	var m dto.Metric
	require.NoError(t, counter.Write(&m))
	return m.Counter.GetValue()
}

func TestRecordLinkCheck(t *testing.T) {
	before := counterValue(t, "github.com", "update")

	RecordLinkCheck("github.com", "update")

	after := counterValue(t, "github.com", "update")
	assert.Equal(t, before+1, after)
}

func TestRecordScanPass(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		duration time.Duration
	}{
		{name: "success with duration", status: "success", duration: 3 * time.Second},
		{name: "failure with duration", status: "failure", duration: time.Second},
		{name: "panic without duration", status: "panic", duration: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				RecordScanPass(tt.status, tt.duration)
			})
		})
	}
}

func TestRecordDBQuery(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordDBQuery("get_links", 5*time.Millisecond)
	})
}

func TestUpdateDBConnectionStats(t *testing.T) {
	assert.NotPanics(t, func() {
		UpdateDBConnectionStats(3, 7)
	})
}
