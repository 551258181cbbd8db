package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/cnharrison/har-insights/internal/analyzer"
)

const namespace = "har_insights"

// Metrics holds the service collectors on a private registry
type Metrics struct {
	registry         *prometheus.Registry
	JobsTotal        *prometheus.CounterVec
	AnalysisDuration prometheus.Histogram
	EntriesAnalyzed  *prometheus.CounterVec
	EntryWarnings    *prometheus.CounterVec
	QueueDepth       prometheus.Gauge
}

func NewMetrics() *Metrics {
	r := prometheus.NewRegistry()
	m := &Metrics{
		registry: r,
		JobsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_total",
			Help:      "Analysis jobs by final status",
		}, []string{"status"}),
		AnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Time spent decoding and analyzing a capture",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		EntriesAnalyzed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_analyzed_total",
			Help:      "Entries analyzed by classification",
		}, []string{"kind"}),
		EntryWarnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entry_warnings_total",
			Help:      "Entries that could only be partially processed, by warning kind",
		}, []string{"kind"}),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_depth",
			Help:      "Jobs waiting for a worker",
		}),
	}
	r.MustRegister(
		m.JobsTotal, m.AnalysisDuration, m.EntriesAnalyzed, m.EntryWarnings, m.QueueDepth,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveAnalysis records entry and warning counts of a finished analysis
func (m *Metrics) ObserveAnalysis(a *analyzer.Analysis) {
	if a == nil {
		return
	}
	wsEntries := a.Metrics.WebSocketMetrics.Connections
	m.EntriesAnalyzed.WithLabelValues(analyzer.KindHTTP.String()).Add(float64(a.Metrics.TotalRequests - wsEntries))
	m.EntriesAnalyzed.WithLabelValues(analyzer.KindWebSocket.String()).Add(float64(wsEntries))
	for _, w := range a.Warnings {
		m.EntryWarnings.WithLabelValues(string(w.Kind)).Inc()
	}
}
