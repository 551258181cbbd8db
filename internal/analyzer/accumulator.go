package analyzer

import (
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cnharrison/har-insights/internal/har"
	"github.com/cnharrison/har-insights/internal/util"
)

// accumulator owns the mutable state of exactly one Analyze call
type accumulator struct {
	thresholds Thresholds
	logger     zerolog.Logger

	metrics    Metrics
	slow       []SlowRequest
	large      []LargeRequest
	errorCount int
	domains    util.Set[string]
	protocols  util.Set[string]
	warnings   []Warning
}

// entryContext carries what the fold steps need to know about the current entry
type entryContext struct {
	index int
	entry har.HAREntry
	class Classification
	// scheme is empty when the request URL is missing, unparsable or relative
	scheme string
}

func newAccumulator(thresholds Thresholds, logger zerolog.Logger) *accumulator {
	return &accumulator{
		thresholds: thresholds,
		logger:     logger,
		metrics:    newMetrics(),
		domains:    util.Set[string]{},
		protocols:  util.Set[string]{},
		warnings:   []Warning{},
	}
}

func (acc *accumulator) warn(index int, kind WarningKind, message string) {
	w := Warning{Entry: index, Kind: kind, Message: message}
	acc.warnings = append(acc.warnings, w)
	acc.logger.Warn().Int("entry", index).Str("kind", string(kind)).Msg(message)
}

// add classifies one entry and folds it into the aggregates
func (acc *accumulator) add(index int, entry har.HAREntry) {
	if entry.DecodeErr != nil {
		acc.warn(index, WarningUndecodableEntry, entry.DecodeErr.Error())
		return
	}
	for _, fe := range entry.FieldErrors {
		acc.warn(index, WarningInvalidField, fe.Error())
	}

	ec := &entryContext{index: index, entry: entry, class: Classify(entry)}
	acc.trackDomain(ec)

	elapsedMs := elapsed(entry)
	acc.metrics.TotalRequests++
	acc.metrics.TotalSize += ec.class.NormalizedSize
	acc.metrics.TotalTime += elapsedMs

	pointType := resourceType(entry)
	if ec.class.Kind == KindWebSocket {
		pointType = har.ResourceTypeWebSocket
	}
	acc.metrics.Timeseries = append(acc.metrics.Timeseries, TimeseriesPoint{
		Timestamp:    entry.StartedDateTime,
		ElapsedTime:  elapsedMs,
		Size:         ec.class.NormalizedSize,
		ResourceType: pointType,
	})

	switch ec.class.Kind {
	case KindWebSocket:
		acc.foldWebSocket(ec)
	default:
		acc.foldHTTP(ec)
	}
}

// trackDomain records the request scheme and hostname, warning instead of
// failing when the URL is missing or has no usable host
func (acc *accumulator) trackDomain(ec *entryContext) {
	if ec.entry.Request == nil {
		acc.warn(ec.index, WarningMissingRequest, "entry has no request; url-based accounting skipped")
		return
	}

	raw := ec.entry.Request.URL
	if u, err := url.Parse(raw); err == nil {
		ec.scheme = strings.ToLower(u.Scheme)
	}
	host, err := har.Hostname(raw)
	if err != nil {
		acc.warn(ec.index, WarningInvalidURL, err.Error())
		return
	}
	acc.domains.Add(host)
}

// finalize derives averages and rates and truncates the candidate lists. The
// accumulator must not be used afterwards.
func (acc *accumulator) finalize() *Analysis {
	m := acc.metrics
	hm := &m.HTTPMetrics
	wm := &m.WebSocketMetrics

	m.Primary = PrimaryMetrics{
		AvgResponseTime: ratio(m.TotalTime, float64(m.TotalRequests)),
		ErrorRate:       errorRate(acc.errorCount, m.StatusCodes),
		TotalSize:       m.TotalSize,
		TotalRequests:   m.TotalRequests,
	}

	hm.AvgResponseTime = ratio(hm.TotalTime, float64(hm.Requests))
	hm.SlowestRequests = util.TopK(acc.slow, acc.thresholds.TopK, func(r SlowRequest) float64 { return r.Time })
	hm.LargestRequests = util.TopK(acc.large, acc.thresholds.TopK, func(r LargeRequest) int64 { return r.Size })

	m.Selected = SelectedMetrics{
		SlowestRequests: hm.SlowestRequests,
		LargestRequests: hm.LargestRequests,
		ErrorCount:      acc.errorCount,
	}

	m.Domains = acc.domains.Sorted()
	wm.Protocols = acc.protocols.Sorted()
	wm.AverageMessageSize = ratio(float64(wm.TotalMessageSize), float64(wm.MessageCount))

	return &Analysis{Metrics: m, Warnings: acc.warnings}
}

// ratio divides, resolving a zero denominator to 0
func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// errorRate is the share of entries with a status that counted as an error
func errorRate(errs int, statusCodes map[string]int) float64 {
	var total int
	for _, n := range statusCodes {
		total += n
	}
	return ratio(float64(errs), float64(total))
}
