package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cnharrison/har-insights/internal/analyzer"
	"github.com/cnharrison/har-insights/internal/insights"
	"github.com/cnharrison/har-insights/internal/observability"
	"github.com/cnharrison/har-insights/internal/store"
)

const sampleHAR = `{"log":{"version":"1.2","entries":[
 {"startedDateTime":"2024-01-01T00:00:00.000Z","time":1200,"_resourceType":"script",
  "request":{"method":"GET","url":"https://cdn.example.com/app.js","headers":[]},
  "response":{"status":200,"headers":[{"name":"cache-control","value":"max-age=60"}],"bodySize":1024,"content":{"size":1024}}},
 {"startedDateTime":"2024-01-01T00:00:01.000Z","time":50,"_resourceType":"fetch",
  "request":{"method":"GET","url":"::bad","headers":[]},
  "response":{"status":500,"headers":[],"bodySize":10,"content":{"size":10}}}
]}}`

type fakeGenerator struct {
	mu       sync.Mutex
	calls    int
	personas []insights.Persona
	insight  string
	err      error
}

func (f *fakeGenerator) Generate(_ context.Context, metrics analyzer.Metrics, persona insights.Persona) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.personas = append(f.personas, persona)
	if f.err != nil {
		return "", f.err
	}
	return f.insight, nil
}

func (f *fakeGenerator) snapshot() (int, []insights.Persona) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls, append([]insights.Persona(nil), f.personas...)
}

type harness struct {
	store   *store.Store
	queue   *Queue
	metrics *observability.Metrics
	cancel  context.CancelFunc
	done    chan error
}

func newHarness(t *testing.T, opts Options, start bool) *harness {
	t.Helper()
	st, err := store.Open(store.Config{InMemory: true, Logger: zerolog.Nop()})
	require.NoError(t, err)

	opts.Metrics = observability.NewMetrics()
	opts.Logger = zerolog.Nop()
	h := &harness{store: st, metrics: opts.Metrics, queue: New(st, opts), done: make(chan error, 1)}

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	if start {
		go func() { h.done <- h.queue.Run(ctx) }()
	}

	t.Cleanup(func() {
		cancel()
		if start {
			select {
			case <-h.done:
			case <-time.After(5 * time.Second):
				t.Error("queue did not stop")
			}
		}
		_ = st.Close()
	})
	return h
}

func (h *harness) waitTerminal(t *testing.T, id string) store.Record {
	t.Helper()
	var rec store.Record
	require.Eventually(t, func() bool {
		var err error
		rec, err = h.store.Get(context.Background(), id)
		return err == nil && rec.Status.Terminal()
	}, 5*time.Second, 10*time.Millisecond)
	return rec
}

func TestQueue_ProcessesJob(t *testing.T) {
	gen := &fakeGenerator{insight: "Cache app.js longer."}
	h := newHarness(t, Options{Workers: 2, QueueSize: 4, Generator: gen}, true)

	id, err := h.queue.Submit(context.Background(), "capture.har", insights.PersonaQA, []byte(sampleHAR))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	rec := h.waitTerminal(t, id)
	assert.Equal(t, store.StatusDone, rec.Status)
	assert.Equal(t, "qa", rec.Persona)
	assert.Equal(t, "capture.har", rec.Source)
	assert.Equal(t, "Cache app.js longer.", rec.Insight)
	require.NotNil(t, rec.Metrics)
	assert.Equal(t, 2, rec.Metrics.TotalRequests)
	assert.Equal(t, 1, rec.Metrics.Selected.ErrorCount)
	require.Len(t, rec.Warnings, 1)
	assert.Equal(t, analyzer.WarningInvalidURL, rec.Warnings[0].Kind)

	_, personas := gen.snapshot()
	assert.Equal(t, []insights.Persona{insights.PersonaQA}, personas)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.JobsTotal.WithLabelValues("done")))
	assert.Equal(t, 2.0, testutil.ToFloat64(h.metrics.EntriesAnalyzed.WithLabelValues("http")))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.EntryWarnings.WithLabelValues(string(analyzer.WarningInvalidURL))))
}

func TestQueue_WithoutGenerator(t *testing.T) {
	h := newHarness(t, Options{Workers: 1, QueueSize: 1}, true)

	id, err := h.queue.Submit(context.Background(), "", insights.PersonaDeveloper, []byte(sampleHAR))
	require.NoError(t, err)

	rec := h.waitTerminal(t, id)
	assert.Equal(t, store.StatusDone, rec.Status)
	assert.Empty(t, rec.Insight)
}

func TestQueue_InsightFailureIsNotFatal(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("rate limited")}
	h := newHarness(t, Options{Workers: 1, QueueSize: 1, Generator: gen}, true)

	id, err := h.queue.Submit(context.Background(), "", insights.PersonaBusiness, []byte(sampleHAR))
	require.NoError(t, err)

	rec := h.waitTerminal(t, id)
	assert.Equal(t, store.StatusDone, rec.Status)
	assert.Empty(t, rec.Insight)
	assert.NotNil(t, rec.Metrics)
	calls, _ := gen.snapshot()
	assert.Equal(t, 1, calls)
}

func TestQueue_InvalidFormatFailsJob(t *testing.T) {
	gen := &fakeGenerator{insight: "unused"}
	h := newHarness(t, Options{Workers: 1, QueueSize: 2, Generator: gen}, true)

	missing, err := h.queue.Submit(context.Background(), "", insights.PersonaQA, []byte(`{"log":{"version":"1.2"}}`))
	require.NoError(t, err)
	garbage, err := h.queue.Submit(context.Background(), "", insights.PersonaQA, []byte(`not json`))
	require.NoError(t, err)

	for _, id := range []string{missing, garbage} {
		rec := h.waitTerminal(t, id)
		assert.Equal(t, store.StatusFailed, rec.Status)
		assert.Contains(t, rec.Error, "invalid har format")
		assert.Nil(t, rec.Metrics)
	}
	calls, _ := gen.snapshot()
	assert.Zero(t, calls)
	assert.Equal(t, 2.0, testutil.ToFloat64(h.metrics.JobsTotal.WithLabelValues("failed")))
}

func TestQueue_TimeoutDiscardsResult(t *testing.T) {
	h := newHarness(t, Options{Workers: 1, QueueSize: 1, Timeout: 20 * time.Millisecond}, false)

	release := make(chan struct{})
	finished := make(chan struct{})
	h.queue.analyze = func([]byte) (*analyzer.Analysis, error) {
		<-release
		defer close(finished)
		return &analyzer.Analysis{Metrics: analyzer.Metrics{TotalRequests: 99}}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = h.queue.Run(ctx) }()

	id, err := h.queue.Submit(context.Background(), "", insights.PersonaQA, []byte(sampleHAR))
	require.NoError(t, err)

	rec := h.waitTerminal(t, id)
	assert.Equal(t, store.StatusFailed, rec.Status)
	assert.Equal(t, ErrAnalysisTimeout.Error(), rec.Error)

	close(release)
	<-finished
	time.Sleep(20 * time.Millisecond)

	rec, err = h.store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, store.StatusFailed, rec.Status, "late result must be discarded")
	assert.Nil(t, rec.Metrics)
}

func TestQueue_SubmitQueueFull(t *testing.T) {
	h := newHarness(t, Options{Workers: 1, QueueSize: 1}, false)
	ctx := context.Background()

	_, err := h.queue.Submit(ctx, "", insights.PersonaQA, []byte(sampleHAR))
	require.NoError(t, err)
	assert.Equal(t, 1, h.queue.Depth())
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.QueueDepth))

	_, err = h.queue.Submit(ctx, "", insights.PersonaQA, []byte(sampleHAR))
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.JobsTotal.WithLabelValues("rejected")))
}

func TestQueue_RunStopsOnCancel(t *testing.T) {
	h := newHarness(t, Options{Workers: 3, QueueSize: 1}, false)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.queue.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
}

func TestQueue_ManyJobs(t *testing.T) {
	h := newHarness(t, Options{Workers: 4, QueueSize: 32}, true)

	ids := make([]string, 0, 20)
	for i := 0; i < 20; i++ {
		id, err := h.queue.Submit(context.Background(), "", insights.PersonaDeveloper, []byte(sampleHAR))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	seen := make(map[string]bool)
	for _, id := range ids {
		assert.False(t, seen[id], "ids must be unique")
		seen[id] = true
		rec := h.waitTerminal(t, id)
		assert.Equal(t, store.StatusDone, rec.Status)
	}
	assert.Equal(t, 20.0, testutil.ToFloat64(h.metrics.JobsTotal.WithLabelValues("done")))
}
