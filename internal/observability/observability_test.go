package observability

import (
	"bytes"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cnharrison/har-insights/internal/analyzer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{" error ", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"bogus", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNewLoggerTo_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, "warn", FormatJSON)

	logger.Info().Msg("dropped")
	logger.Warn().Int("entry", 3).Msg("kept")

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, `"entry":3`)
	assert.Contains(t, out, `"message":"kept"`)
}

func TestNewLoggerTo_Console(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, "info", FormatConsole)

	logger.Info().Str("job_id", "abc").Msg("hello")

	out := buf.String()
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "job_id=")
	assert.NotContains(t, out, "{")
}

func TestMetrics_ObserveAnalysis(t *testing.T) {
	m := NewMetrics()

	analysis := &analyzer.Analysis{
		Metrics: analyzer.Metrics{
			TotalRequests:    5,
			WebSocketMetrics: analyzer.WebSocketMetrics{Connections: 2},
		},
		Warnings: []analyzer.Warning{
			{Entry: 1, Kind: analyzer.WarningInvalidURL},
			{Entry: 4, Kind: analyzer.WarningInvalidURL},
			{Entry: 2, Kind: analyzer.WarningMissingResponse},
		},
	}
	m.ObserveAnalysis(analysis)
	m.ObserveAnalysis(nil)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.EntriesAnalyzed.WithLabelValues("http")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.EntriesAnalyzed.WithLabelValues("websocket")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.EntryWarnings.WithLabelValues(string(analyzer.WarningInvalidURL))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EntryWarnings.WithLabelValues(string(analyzer.WarningMissingResponse))))
}

func TestMetrics_Registry(t *testing.T) {
	m := NewMetrics()
	m.JobsTotal.WithLabelValues("done").Inc()
	m.QueueDepth.Set(2)

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["har_insights_jobs_total"])
	assert.True(t, names["har_insights_queue_depth"])
	assert.True(t, names["go_goroutines"])
}
