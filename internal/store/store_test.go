package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cnharrison/har-insights/internal/analyzer"
)

func openTestStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()
	s, err := Open(Config{InMemory: true, TTL: ttl, Logger: zerolog.Nop()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_PutGet(t *testing.T) {
	s := openTestStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, Record{ID: "a1", Persona: "qa", Status: StatusQueued, Source: "capture.har"}))

	rec, err := s.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "a1", rec.ID)
	assert.Equal(t, "qa", rec.Persona)
	assert.Equal(t, StatusQueued, rec.Status)
	assert.Equal(t, "capture.har", rec.Source)
	assert.False(t, rec.CreatedAt.IsZero())
	assert.False(t, rec.UpdatedAt.IsZero())
	assert.Nil(t, rec.Metrics)
}

func TestStore_GetNotFound(t *testing.T) {
	s := openTestStore(t, 0)

	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.SetStatus(context.Background(), "missing", StatusRunning, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_PutRequiresID(t *testing.T) {
	s := openTestStore(t, 0)
	assert.Error(t, s.Put(context.Background(), Record{}))
}

func TestStore_CancelledContext(t *testing.T) {
	s := openTestStore(t, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Put(ctx, Record{ID: "x"}), context.Canceled)
	_, err := s.Get(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStore_SetStatus(t *testing.T) {
	s := openTestStore(t, 0)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, Record{ID: "j", Status: StatusQueued}))
	first, err := s.Get(ctx, "j")
	require.NoError(t, err)

	require.NoError(t, s.SetStatus(ctx, "j", StatusFailed, "analysis timed out"))

	rec, err := s.Get(ctx, "j")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, rec.Status)
	assert.Equal(t, "analysis timed out", rec.Error)
	assert.True(t, rec.Status.Terminal())
	assert.Equal(t, first.CreatedAt, rec.CreatedAt)
	assert.False(t, rec.UpdatedAt.Before(first.UpdatedAt))
}

func TestStore_UpdateErrorAborts(t *testing.T) {
	s := openTestStore(t, 0)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, Record{ID: "j", Status: StatusQueued}))

	boom := errors.New("boom")
	err := s.Update(ctx, "j", func(rec *Record) error {
		rec.Status = StatusDone
		return boom
	})
	assert.ErrorIs(t, err, boom)

	rec, err := s.Get(ctx, "j")
	require.NoError(t, err)
	assert.Equal(t, StatusQueued, rec.Status)
}

func TestStore_SaveResult(t *testing.T) {
	s := openTestStore(t, 0)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, Record{ID: "j", Status: StatusRunning}))

	analysis := &analyzer.Analysis{
		Metrics:  analyzer.Metrics{TotalRequests: 7, Domains: []string{"example.com"}},
		Warnings: []analyzer.Warning{{Entry: 2, Kind: analyzer.WarningInvalidURL, Message: "bad"}},
	}
	require.NoError(t, s.SaveResult(ctx, "j", "business", analysis, "all good"))

	rec, err := s.Get(ctx, "j")
	require.NoError(t, err)
	assert.Equal(t, StatusDone, rec.Status)
	assert.Equal(t, "business", rec.Persona)
	assert.Equal(t, "all good", rec.Insight)
	require.NotNil(t, rec.Metrics)
	assert.Equal(t, 7, rec.Metrics.TotalRequests)
	assert.Equal(t, []string{"example.com"}, rec.Metrics.Domains)
	require.Len(t, rec.Warnings, 1)
	assert.Equal(t, analyzer.WarningInvalidURL, rec.Warnings[0].Kind)

	assert.Error(t, s.SaveResult(ctx, "j", "qa", nil, ""))
}

func TestStore_TTLExpiry(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for record expiry")
	}
	s := openTestStore(t, time.Second)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, Record{ID: "short-lived"}))

	_, err := s.Get(ctx, "short-lived")
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		_, err := s.Get(ctx, "short-lived")
		return errors.Is(err, ErrNotFound)
	}, 5*time.Second, 100*time.Millisecond)
}

func TestStore_Watch(t *testing.T) {
	s := openTestStore(t, 0)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Put(ctx, Record{ID: "w", Status: StatusQueued}))

	updates := make(chan Record, 16)
	done := make(chan error, 1)
	go func() {
		done <- s.Watch(ctx, "w", func(rec Record) error {
			updates <- rec
			if rec.Status.Terminal() {
				return errStopWatch
			}
			return nil
		})
	}()

	// The subscription registers asynchronously; keep writing until it is seen.
	require.Eventually(t, func() bool {
		_ = s.SetStatus(ctx, "w", StatusRunning, "")
		select {
		case rec := <-updates:
			return rec.Status == StatusRunning
		default:
			return false
		}
	}, 3*time.Second, 50*time.Millisecond)

	// writes to other jobs are not delivered
	require.NoError(t, s.Put(ctx, Record{ID: "w2", Status: StatusQueued}))
	require.NoError(t, s.SetStatus(ctx, "w", StatusDone, ""))

	select {
	case err := <-done:
		assert.ErrorIs(t, err, errStopWatch)
	case <-ctx.Done():
		t.Fatal("watch did not stop on terminal status")
	}

	for len(updates) > 0 {
		rec := <-updates
		assert.Equal(t, "w", rec.ID)
	}
}

func TestStore_WatchStopsOnCancel(t *testing.T) {
	s := openTestStore(t, 0)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- s.Watch(ctx, "idle", func(Record) error { return nil })
	}()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("watch did not return after cancel")
	}
}

func TestStore_RunGCStops(t *testing.T) {
	s := openTestStore(t, 0)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		s.RunGC(ctx, 10*time.Millisecond)
		close(done)
	}()
	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunGC did not stop")
	}
}

func TestOpen_Persistent(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := Open(Config{Path: dir, Logger: zerolog.Nop()})
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, Record{ID: "p", Status: StatusDone}))
	require.NoError(t, s.Close())

	s, err = Open(Config{Path: dir, Logger: zerolog.Nop()})
	require.NoError(t, err)
	defer s.Close()

	rec, err := s.Get(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, StatusDone, rec.Status)
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open(Config{})
	assert.Error(t, err)
}

var errStopWatch = errors.New("stop watching")
