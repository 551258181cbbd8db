package ui

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/cnharrison/har-insights/internal/har"
)

const dashboardHAR = `{"log":{"version":"1.2","entries":[
 42,
 {"startedDateTime":"2024-01-01T00:00:00.000Z","time":1500,"_resourceType":"document",
  "request":{"method":"GET","url":"https://example.com/","headers":[{"name":"Accept","value":"text/html"}]},
  "response":{"status":200,"statusText":"OK","headers":[{"name":"Cache-Control","value":"max-age=60"}],"bodySize":2000000,
   "content":{"size":2000000,"mimeType":"text/html","text":"<html><body>hi</body></html>"}}},
 {"startedDateTime":"2024-01-01T00:00:01.000Z","time":80,"_resourceType":"fetch",
  "request":{"method":"POST","url":"http://api.example.com/items","headers":[],"postData":{"mimeType":"application/json","text":"{\"a\":1}"}},
  "response":{"status":500,"statusText":"Internal Server Error","headers":[],"bodySize":20,
   "content":{"size":20,"mimeType":"application/json","text":"{\"error\":\"boom\"}"}}},
 {"startedDateTime":"2024-01-01T00:00:02.000Z","time":3000,"_resourceType":"websocket",
  "request":{"method":"GET","url":"wss://example.com/socket","headers":[]},
  "response":{"status":101,"headers":[],"content":{"size":0}},
  "_webSocketMessages":[{"type":"send","time":1,"opcode":1,"data":"{\"cmd\":\"ping\"}"},
                        {"type":"receive","time":2,"opcode":1,"data":"{\"type\":\"pong\"}"}]}
]}}`

type clipboardRecorder struct {
	copied []string
}

func (c *clipboardRecorder) copy(text string) error {
	c.copied = append(c.copied, text)
	return nil
}

func newTestDashboard(t *testing.T) (*Application, *clipboardRecorder) {
	t.Helper()
	doc, err := har.ParseHAR([]byte(dashboardHAR))
	if err != nil {
		t.Fatalf("ParseHAR() error = %v", err)
	}

	clip := &clipboardRecorder{}
	app := NewApplication("session.har", Options{Logger: zerolog.Nop(), Copy: clip.copy})
	app.setupUI()
	app.finishLoading(doc)
	return app, clip
}

func TestFinishLoadingAnalyzes(t *testing.T) {
	app, _ := newTestDashboard(t)

	if app.isLoading {
		t.Error("expected loading to be finished")
	}
	if app.analysis == nil {
		t.Fatal("expected an analysis")
	}
	if got := app.analysis.Metrics.TotalRequests; got != 3 {
		t.Errorf("TotalRequests = %d, want 3", got)
	}
	if want := []int{1, 2, 3}; len(app.analyzedIdx) != len(want) {
		t.Errorf("analyzedIdx = %v, want %v", app.analyzedIdx, want)
	}

	overview := app.overviewView.GetText(true)
	if !strings.Contains(overview, "Requests:") {
		t.Errorf("overview missing request count: %q", overview)
	}
	if !strings.Contains(app.warningsView.GetText(true), "undecodable-entry") {
		t.Error("expected the undecodable entry warning to be listed")
	}
	if !strings.Contains(app.domainsView.GetText(true), "insecure-protocol") {
		t.Error("expected the http request to be flagged")
	}
	if !strings.Contains(app.websocketView.GetText(true), "Connections:") {
		t.Error("expected WebSocket stats")
	}
}

func TestTablesSelectEntries(t *testing.T) {
	app, _ := newTestDashboard(t)

	// header plus one slow request
	if got := app.slowestTable.GetRowCount(); got != 2 {
		t.Errorf("slowest rows = %d, want 2", got)
	}
	if got := app.largestTable.GetRowCount(); got != 2 {
		t.Errorf("largest rows = %d, want 2", got)
	}

	if app.selected == nil || app.selected.Request.URL != "https://example.com/" {
		t.Fatalf("expected the slowest request to be selected, got %+v", app.selected)
	}
	if detail := app.detailView.GetText(true); !strings.Contains(detail, "https://example.com/") {
		t.Errorf("detail view missing url: %q", detail)
	}
}

func TestSelectTimeseriesPointSkipsUndecodable(t *testing.T) {
	app, _ := newTestDashboard(t)

	app.selectTimeseriesPoint(1)

	if app.selected == nil || app.selected.Request.URL != "http://api.example.com/items" {
		t.Fatalf("point 1 should map to the api request, got %+v", app.selected)
	}

	app.selectTimeseriesPoint(99)
	if app.selected.Request.URL != "http://api.example.com/items" {
		t.Error("out of range point should not change the selection")
	}
}

func TestCopyActions(t *testing.T) {
	app, clip := newTestDashboard(t)

	app.copyReport()
	app.selectTimeseriesPoint(1)
	app.copyCurl()

	if len(clip.copied) != 2 {
		t.Fatalf("copied %d items, want 2", len(clip.copied))
	}
	if !strings.HasPrefix(clip.copied[0], "# HAR") {
		t.Errorf("report does not look like markdown: %q", clip.copied[0][:20])
	}
	if !strings.Contains(clip.copied[1], "curl -X POST 'http://api.example.com/items'") {
		t.Errorf("unexpected curl command: %q", clip.copied[1])
	}
}

func TestCopyCurlWithoutSelection(t *testing.T) {
	clip := &clipboardRecorder{}
	app := NewApplication("session.har", Options{Logger: zerolog.Nop(), Copy: clip.copy})
	app.setupUI()

	app.copyCurl()
	app.copyReport()

	if len(clip.copied) != 0 {
		t.Errorf("nothing should be copied before analysis, got %d", len(clip.copied))
	}
	if app.confirmationMessage == "" {
		t.Error("expected a status message")
	}
}

func TestToggleErrorsOnlyReanalyzes(t *testing.T) {
	app, _ := newTestDashboard(t)

	app.toggleErrorsOnly()

	if !app.filterState.ShowErrorsOnly {
		t.Fatal("expected errors-only to be on")
	}
	// the 500 is kept; the undecodable entry is kept but skipped by analysis
	if got := app.analysis.Metrics.TotalRequests; got != 1 {
		t.Errorf("TotalRequests = %d, want 1", got)
	}
	if got := len(app.source.Log.Entries); got != 4 {
		t.Errorf("source should be untouched, has %d entries", got)
	}

	app.toggleErrorsOnly()
	if got := app.analysis.Metrics.TotalRequests; got != 3 {
		t.Errorf("TotalRequests = %d after reset, want 3", got)
	}
}

func TestFinishLoadingInvalidFormat(t *testing.T) {
	app := NewApplication("empty.har", Options{Logger: zerolog.Nop()})
	app.setupUI()

	app.finishLoading(&har.HARFile{Log: &har.HARLog{}})

	if app.analysis != nil {
		t.Error("expected no analysis for a document without entries")
	}
	if app.loadErr == nil {
		t.Error("expected the analysis error to be recorded")
	}
	app.updateBottomBar()
	if !strings.Contains(app.bottomBar.GetText(true), "Error:") {
		t.Errorf("bottom bar should show the error: %q", app.bottomBar.GetText(true))
	}
}

func TestPanelCycling(t *testing.T) {
	app, _ := newTestDashboard(t)

	if got := app.currentPanelName(); got != panelSlowest {
		t.Fatalf("initial panel = %q, want %q", got, panelSlowest)
	}
	app.cyclePanel(1)
	if got := app.currentPanelName(); got != panelLargest {
		t.Errorf("after Tab = %q, want %q", got, panelLargest)
	}
	app.cyclePanel(-2)
	if got := app.currentPanelName(); got != panelWarnings {
		t.Errorf("after wrap = %q, want %q", got, panelWarnings)
	}

	app.toggleWaterfall()
	if !app.showWaterfall || app.currentPanelName() != panelWaterfall {
		t.Errorf("waterfall toggle: show=%v panel=%q", app.showWaterfall, app.currentPanelName())
	}
	app.toggleWaterfall()
	if app.showWaterfall || app.currentPanelName() != panelSlowest {
		t.Errorf("waterfall toggle back: show=%v panel=%q", app.showWaterfall, app.currentPanelName())
	}
}

func TestRenderHistogramsOrdersByCount(t *testing.T) {
	app, _ := newTestDashboard(t)

	text := app.histogramView.GetText(true)
	if !strings.Contains(text, "Status codes") || !strings.Contains(text, "Resource types") {
		t.Fatalf("missing sections: %q", text)
	}
	keys := sortedCounts(map[string]int{"5xx": 1, "2xx": 3, "4xx": 1})
	if strings.Join(keys, ",") != "2xx,4xx,5xx" {
		t.Errorf("sortedCounts() = %v", keys)
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"https://example.com/very/long", 12, "https://e..."},
		{"abcdef", 3, "abc"},
	}
	for _, tt := range tests {
		if got := truncateString(tt.in, tt.max); got != tt.want {
			t.Errorf("truncateString(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
