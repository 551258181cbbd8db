package filter

import (
	"net/url"
	"strings"

	"github.com/cnharrison/har-insights/internal/har"
	"github.com/cnharrison/har-insights/internal/util"
)

// TypeAll disables the resource type filter
const TypeAll = "all"

// FilterState selects which entries of a capture take part in an analysis
type FilterState struct {
	FilterText       string
	HostFilter       string
	ShowErrorsOnly   bool
	ActiveTypeFilter string
}

// NewFilterState creates a filter that keeps every entry
func NewFilterState() *FilterState {
	return &FilterState{
		ActiveTypeFilter: TypeAll,
	}
}

// IsActive reports whether any criterion is set
func (f *FilterState) IsActive() bool {
	return f.FilterText != "" || f.HostFilter != "" || f.ShowErrorsOnly || (f.ActiveTypeFilter != "" && f.ActiveTypeFilter != TypeAll)
}

// FilterEntries returns the indices of the matching entries, in input order
func (f *FilterState) FilterEntries(entries []har.HAREntry) []int {
	result := make([]int, 0, len(entries))
	for i, entry := range entries {
		if f.ActiveTypeFilter == "" || f.ActiveTypeFilter == TypeAll || strings.EqualFold(har.InferResourceType(entry), f.ActiveTypeFilter) {
			result = append(result, i)
		}
	}

	if f.ShowErrorsOnly {
		result = util.IntersectIndices(errorIndices(entries), result)
	}

	if f.HostFilter != "" {
		result = util.IntersectIndices(hostIndices(entries, strings.ToLower(f.HostFilter)), result)
	}

	if f.FilterText != "" {
		text := strings.ToLower(f.FilterText)
		var textIndices []int
		for i, entry := range entries {
			if matchesTextSearch(entry, text) {
				textIndices = append(textIndices, i)
			}
		}
		result = util.IntersectIndices(textIndices, result)
	}

	return result
}

// Apply returns a copy of doc holding only the matching entries. A document
// without an entries container is returned unchanged so that the analyzer still
// reports it as invalid.
func (f *FilterState) Apply(doc *har.HARFile) *har.HARFile {
	if doc == nil || doc.Log == nil || doc.Log.Entries == nil || !f.IsActive() {
		return doc
	}

	logCopy := *doc.Log
	indices := f.FilterEntries(doc.Log.Entries)
	logCopy.Entries = make([]har.HAREntry, 0, len(indices))
	for _, idx := range indices {
		logCopy.Entries = append(logCopy.Entries, doc.Log.Entries[idx])
	}
	return &har.HARFile{Log: &logCopy}
}

// Reset resets all filters to their default state
func (f *FilterState) Reset() {
	f.FilterText = ""
	f.HostFilter = ""
	f.ShowErrorsOnly = false
	f.ActiveTypeFilter = TypeAll
}

// ToggleErrorsOnly toggles the errors-only filter
func (f *FilterState) ToggleErrorsOnly() {
	f.ShowErrorsOnly = !f.ShowErrorsOnly
}

// SetTextFilter sets the text filter
func (f *FilterState) SetTextFilter(text string) {
	f.FilterText = text
}

// SetHostFilter keeps only entries whose hostname contains host
func (f *FilterState) SetHostFilter(host string) {
	f.HostFilter = host
}

// SetTypeFilter sets the type filter
func (f *FilterState) SetTypeFilter(filterType string) {
	f.ActiveTypeFilter = filterType
}

// GetTypeFilters returns available type filters
func GetTypeFilters() []string {
	return []string{TypeAll, "document", "stylesheet", "script", "image", "font", "media", "fetch", "xhr", "websocket", "manifest", "other"}
}

// errorIndices selects failed exchanges: 4xx/5xx, status 0 and entries without a response
func errorIndices(entries []har.HAREntry) []int {
	var result []int
	for i, entry := range entries {
		if entry.Response == nil || entry.Response.Status >= 400 || entry.Response.Status == 0 {
			result = append(result, i)
		}
	}
	return result
}

func hostIndices(entries []har.HAREntry, host string) []int {
	var result []int
	for i, entry := range entries {
		if entry.Request == nil {
			continue
		}
		if h, err := har.Hostname(entry.Request.URL); err == nil && strings.Contains(h, host) {
			result = append(result, i)
		}
	}
	return result
}

// matchesTextSearch matches against the URL, method, headers and status text
func matchesTextSearch(entry har.HAREntry, searchText string) bool {
	if entry.Request != nil {
		if u, err := url.Parse(entry.Request.URL); err == nil {
			if strings.Contains(strings.ToLower(u.Host), searchText) ||
				strings.Contains(strings.ToLower(u.Path), searchText) ||
				strings.Contains(strings.ToLower(u.RawQuery), searchText) {
				return true
			}
		}

		if strings.Contains(strings.ToLower(entry.Request.Method), searchText) {
			return true
		}

		for _, header := range entry.Request.Headers {
			if strings.Contains(strings.ToLower(header.Name), searchText) ||
				strings.Contains(strings.ToLower(header.Value), searchText) {
				return true
			}
		}
	}

	if entry.Response != nil {
		for _, header := range entry.Response.Headers {
			if strings.Contains(strings.ToLower(header.Name), searchText) ||
				strings.Contains(strings.ToLower(header.Value), searchText) {
				return true
			}
		}

		if strings.Contains(strings.ToLower(entry.Response.StatusText), searchText) ||
			strings.Contains(strings.ToLower(entry.Response.Content.MimeType), searchText) {
			return true
		}
	}

	return false
}
