// Package analyzer computes performance and diagnostic metrics from a HAR capture.
//
// Analysis is a single synchronous pass over log.entries. Every entry is
// classified as an HTTP exchange or a WebSocket session, folded into the
// aggregates of its kind, and recorded on a timeseries in input order. After the
// pass, averages and rates are derived (zero when their denominator is zero) and
// the slow/large candidate lists are cut down to the top K.
//
// Each call builds its own accumulator, so an Analyzer may be shared by
// concurrent goroutines as long as callers do not mutate the document while it
// is being analyzed. Problems with individual entries never fail the run; they
// are returned as warnings. Only a document without a log.entries container
// fails, with ErrInvalidFormat.
package analyzer

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/cnharrison/har-insights/internal/har"
)

// Thresholds tune slow/large candidacy and the length of the top lists
type Thresholds struct {
	SlowMs     float64 `yaml:"slow_ms" json:"slowMs"`
	LargeBytes int64   `yaml:"large_bytes" json:"largeBytes"`
	TopK       int     `yaml:"top_k" json:"topK"`
}

// DefaultThresholds returns 1000ms / 1,000,000 bytes / top 5
func DefaultThresholds() Thresholds {
	return Thresholds{
		SlowMs:     1000,
		LargeBytes: 1_000_000,
		TopK:       5,
	}
}

func (t Thresholds) withDefaults() Thresholds {
	def := DefaultThresholds()
	if t.SlowMs <= 0 {
		t.SlowMs = def.SlowMs
	}
	if t.LargeBytes <= 0 {
		t.LargeBytes = def.LargeBytes
	}
	if t.TopK <= 0 {
		t.TopK = def.TopK
	}
	return t
}

// Analyzer runs analyses with a fixed configuration
type Analyzer struct {
	logger     zerolog.Logger
	thresholds Thresholds
}

// Option configures an Analyzer
type Option func(*Analyzer)

// WithLogger sets the logger used to report entry warnings
func WithLogger(logger zerolog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = logger
	}
}

// WithThresholds overrides the candidacy thresholds; zero fields keep their defaults
func WithThresholds(t Thresholds) Option {
	return func(a *Analyzer) {
		a.thresholds = t.withDefaults()
	}
}

// New creates an Analyzer
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		logger:     zerolog.Nop(),
		thresholds: DefaultThresholds(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Thresholds returns the thresholds in effect
func (a *Analyzer) Thresholds() Thresholds {
	return a.thresholds
}

// Analyze walks every entry of doc once, in order, and returns the finalized metrics
func (a *Analyzer) Analyze(doc *har.HARFile) (*Analysis, error) {
	if doc == nil || doc.Log == nil || doc.Log.Entries == nil {
		return nil, ErrInvalidFormat
	}

	acc := newAccumulator(a.thresholds, a.logger)
	for i, entry := range doc.Log.Entries {
		acc.add(i, entry)
	}
	return acc.finalize(), nil
}

// AnalyzeJSON decodes a HAR document and analyzes it. A payload that is not
// valid JSON is reported as ErrInvalidFormat.
func (a *Analyzer) AnalyzeJSON(data []byte) (*Analysis, error) {
	doc, err := har.ParseHAR(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return a.Analyze(doc)
}

// Analyze runs an analysis with the default thresholds and no logging
func Analyze(doc *har.HARFile) (*Analysis, error) {
	return New().Analyze(doc)
}
