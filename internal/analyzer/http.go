package analyzer

import (
	"fmt"
	"strings"

	"github.com/cnharrison/har-insights/internal/har"
)

// statusBucket groups a status code by its leading digit, e.g. 404 -> "4xx"
func statusBucket(status int) string {
	return fmt.Sprintf("%dxx", status/100)
}

// isErrorStatus reports a client or server error, the 4xx and 5xx buckets.
// Non-standard codes of 600 and above are not errors.
func isErrorStatus(status int) bool {
	return status >= 400 && status < 600
}

// cacheOutcome reports whether a response counts as a cache hit.
// A cache-control header carrying no-cache or no-store is a miss, any other
// cache-control header is a hit, and a response without the header is a miss.
func cacheOutcome(headers []har.HARHeader) bool {
	value, ok := har.Header(headers, "cache-control")
	if !ok {
		return false
	}
	value = strings.ToLower(value)
	return !strings.Contains(value, "no-cache") && !strings.Contains(value, "no-store")
}

// foldHTTP adds one HTTP-classified entry to the running aggregates
func (acc *accumulator) foldHTTP(ec *entryContext) {
	entry := ec.entry
	hm := &acc.metrics.HTTPMetrics

	elapsedMs := elapsed(entry)
	typ := resourceType(entry)
	url := requestURL(entry)

	hm.Requests++
	hm.TotalSize += ec.class.NormalizedSize
	hm.TotalTime += elapsedMs
	acc.metrics.RequestsByType[typ]++

	if elapsedMs > acc.thresholds.SlowMs {
		acc.slow = append(acc.slow, SlowRequest{URL: url, Time: elapsedMs, Type: typ})
	}
	if ec.class.NormalizedSize > acc.thresholds.LargeBytes {
		acc.large = append(acc.large, LargeRequest{URL: url, Size: ec.class.NormalizedSize, Type: typ})
	}

	if ec.scheme != "" && ec.scheme != "https" {
		hm.SecurityIssues = append(hm.SecurityIssues, SecurityIssue{Type: SecurityIssueInsecureProtocol, URL: url})
	}

	if entry.Response == nil {
		acc.warn(ec.index, WarningMissingResponse, "entry has no response; status and cache accounting skipped")
		return
	}

	bucket := statusBucket(entry.Response.Status)
	hm.StatusCodes[bucket]++
	acc.metrics.StatusCodes[bucket]++
	if isErrorStatus(entry.Response.Status) {
		acc.errorCount++
	}

	if cacheOutcome(entry.Response.Headers) {
		hm.CacheHits++
	} else {
		hm.CacheMisses++
	}
}
