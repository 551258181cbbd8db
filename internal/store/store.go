// Package store persists analysis jobs and their results in BadgerDB.
//
// Records are JSON values under job/<id>. Every write refreshes the record's
// TTL, so expired jobs disappear without a cleanup sweep.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/pb"
	"github.com/rs/zerolog"

	"github.com/cnharrison/har-insights/internal/analyzer"
)

// ErrNotFound is returned for unknown or expired job ids
var ErrNotFound = errors.New("job not found")

const keyPrefix = "job/"

// Status is the lifecycle state of a job
type Status string

const (
	StatusQueued  Status = "queued"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Terminal reports whether no further transitions happen from s
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusFailed
}

// Record is one analysis job
type Record struct {
	ID        string             `json:"id"`
	Persona   string             `json:"persona"`
	Status    Status             `json:"status"`
	Source    string             `json:"source,omitempty"`
	Metrics   *analyzer.Metrics  `json:"metrics,omitempty"`
	Warnings  []analyzer.Warning `json:"warnings,omitempty"`
	Insight   string             `json:"insight,omitempty"`
	Error     string             `json:"error,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// Config configures Open
type Config struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path     string
	InMemory bool
	// TTL bounds how long a record lives after its last write. Zero keeps records forever.
	TTL            time.Duration
	GCDiscardRatio float64
	Logger         zerolog.Logger
}

// Store is a job record store
type Store struct {
	db     *badger.DB
	ttl    time.Duration
	ratio  float64
	logger zerolog.Logger
}

type badgerLogger struct {
	logger zerolog.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error().Msgf(format, args...)
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn().Msgf(format, args...)
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug().Msgf(format, args...)
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Trace().Msgf(format, args...)
}

// Open opens or creates a store
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent store")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create store directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithNumVersionsToKeep(1).WithLogger(badgerLogger{logger: cfg.Logger.With().Str("component", "badger").Logger()})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}

	ratio := cfg.GCDiscardRatio
	if ratio <= 0 || ratio >= 1 {
		ratio = 0.5
	}
	return &Store{db: db, ttl: cfg.TTL, ratio: ratio, logger: cfg.Logger}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

func recordKey(id string) []byte {
	return []byte(keyPrefix + id)
}

// Put writes rec, stamping UpdatedAt and CreatedAt when unset
func (s *Store) Put(ctx context.Context, rec Record) error {
	if rec.ID == "" {
		return errors.New("record id is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return s.write(txn, &rec)
	})
}

// Get returns the record for id
func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	var rec Record
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		rec, err = read(txn, id)
		return err
	})
	return rec, err
}

// Update applies fn to the stored record in a single transaction
func (s *Store) Update(ctx context.Context, id string, fn func(*Record) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		rec, err := read(txn, id)
		if err != nil {
			return err
		}
		if err := fn(&rec); err != nil {
			return err
		}
		return s.write(txn, &rec)
	})
}

// SetStatus moves a job to status, recording errMsg for failures
func (s *Store) SetStatus(ctx context.Context, id string, status Status, errMsg string) error {
	return s.Update(ctx, id, func(rec *Record) error {
		rec.Status = status
		rec.Error = errMsg
		return nil
	})
}

// SaveResult stores the outcome of an analysis and marks the job done
func (s *Store) SaveResult(ctx context.Context, id, persona string, analysis *analyzer.Analysis, insight string) error {
	if analysis == nil {
		return errors.New("analysis is required")
	}
	return s.Update(ctx, id, func(rec *Record) error {
		metrics := analysis.Metrics
		rec.Persona = persona
		rec.Metrics = &metrics
		rec.Warnings = analysis.Warnings
		rec.Insight = insight
		rec.Status = StatusDone
		rec.Error = ""
		return nil
	})
}

// Watch calls fn with the record each time job id is written, until ctx is
// done or fn returns an error. Writes that happen before the subscription is
// registered are not replayed.
func (s *Store) Watch(ctx context.Context, id string, fn func(Record) error) error {
	err := s.db.Subscribe(ctx, func(kvs *badger.KVList) error {
		for _, kv := range kvs.Kv {
			if string(kv.Key) != keyPrefix+id {
				continue
			}
			var rec Record
			if err := json.Unmarshal(kv.Value, &rec); err != nil {
				return fmt.Errorf("decode record %s: %w", id, err)
			}
			if err := fn(rec); err != nil {
				return err
			}
		}
		return nil
	}, []pb.Match{{Prefix: recordKey(id)}})
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// RunGC reclaims value log space every interval until ctx is done
func (s *Store) RunGC(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := s.db.RunValueLogGC(s.ratio)
			switch {
			case err == nil:
				s.logger.Debug().Msg("badger value log GC completed")
			case errors.Is(err, badger.ErrNoRewrite), errors.Is(err, badger.ErrGCInMemoryMode):
			default:
				s.logger.Warn().Err(err).Msg("badger value log GC failed")
			}
		}
	}
}

func (s *Store) write(txn *badger.Txn, rec *Record) error {
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	value, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record %s: %w", rec.ID, err)
	}
	entry := badger.NewEntry(recordKey(rec.ID), value)
	if s.ttl > 0 {
		entry = entry.WithTTL(s.ttl)
	}
	return txn.SetEntry(entry)
}

func read(txn *badger.Txn, id string) (Record, error) {
	item, err := txn.Get(recordKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("read record %s: %w", id, err)
	}

	var rec Record
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &rec)
	})
	if err != nil {
		return Record{}, fmt.Errorf("decode record %s: %w", id, err)
	}
	return rec, nil
}
