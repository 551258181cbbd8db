package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rivo/tview"

	"github.com/cnharrison/har-insights/internal/analyzer"
	"github.com/cnharrison/har-insights/internal/format"
	"github.com/cnharrison/har-insights/internal/har"
)

func renderOverview(m analyzer.Metrics) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[yellow]Requests:[white]      %d\n", m.TotalRequests)
	fmt.Fprintf(&b, "[yellow]Total size:[white]    %s\n", format.Bytes(m.TotalSize))
	fmt.Fprintf(&b, "[yellow]Total time:[white]    %s\n", format.Duration(m.TotalTime))
	fmt.Fprintf(&b, "[yellow]Avg response:[white]  %s\n", format.Duration(m.Primary.AvgResponseTime))
	fmt.Fprintf(&b, "[yellow]Error rate:[white]    %s\n", format.Percent(m.Primary.ErrorRate))
	fmt.Fprintf(&b, "[yellow]Errors:[white]        %d\n", m.Selected.ErrorCount)

	hm := m.HTTPMetrics
	b.WriteString("\n[::b]HTTP[::-]\n")
	fmt.Fprintf(&b, "[yellow]Requests:[white]      %d\n", hm.Requests)
	fmt.Fprintf(&b, "[yellow]Avg response:[white]  %s\n", format.Duration(hm.AvgResponseTime))
	fmt.Fprintf(&b, "[yellow]Cache:[white]         [green]%d hit[white] / [red]%d miss[white]\n", hm.CacheHits, hm.CacheMisses)
	return b.String()
}

// sortedCounts orders histogram keys by count descending, then by key
func sortedCounts(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}

func histogramBar(count, peak int) string {
	if peak <= 0 || count <= 0 {
		return ""
	}
	width := count * histogramBarSize / peak
	if width < 1 {
		width = 1
	}
	return strings.Repeat("█", width)
}

func writeHistogram(b *strings.Builder, counts map[string]int, color func(string) string) {
	if len(counts) == 0 {
		b.WriteString("[dim]none[white]\n")
		return
	}
	keys := sortedCounts(counts)
	peak := counts[keys[0]]
	for _, k := range keys {
		fmt.Fprintf(b, "[%s]%-11s[white] %5d %s\n", color(k), truncateString(k, 11), counts[k], histogramBar(counts[k], peak))
	}
}

func renderHistograms(m analyzer.Metrics) string {
	var b strings.Builder
	b.WriteString("[::b]Status codes[::-]\n")
	writeHistogram(&b, m.StatusCodes, format.StatusColor)
	b.WriteString("\n[::b]Resource types[::-]\n")
	writeHistogram(&b, m.RequestsByType, resourceColor)
	return b.String()
}

func renderWebSocket(wm analyzer.WebSocketMetrics) string {
	if wm.Connections == 0 {
		return "[dim]No WebSocket connections[white]"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[yellow]Connections:[white]  %d\n", wm.Connections)
	fmt.Fprintf(&b, "[yellow]Messages:[white]     %d ([cyan]%d sent[white], [green]%d received[white])\n",
		wm.MessageCount, wm.SentMessages, wm.ReceivedMessages)
	fmt.Fprintf(&b, "[yellow]Payload:[white]      %s (avg %s)\n",
		format.Bytes(wm.TotalMessageSize), format.Bytes(int64(wm.AverageMessageSize)))
	fmt.Fprintf(&b, "[yellow]Duration:[white]     %s\n", format.Duration(wm.ConnectionDuration))
	if len(wm.Protocols) > 0 {
		fmt.Fprintf(&b, "[yellow]Protocols:[white]    %s\n", tview.Escape(strings.Join(wm.Protocols, ", ")))
	}
	b.WriteString("\n[::b]Message types[::-]\n")
	writeHistogram(&b, wm.MessageTypes, func(string) string { return "cyan" })
	return b.String()
}

func renderDomains(m analyzer.Metrics) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[::b]Domains (%d)[::-]\n", len(m.Domains))
	for _, d := range m.Domains {
		fmt.Fprintf(&b, "  [blue]%s[white]\n", tview.Escape(d))
	}

	issues := m.HTTPMetrics.SecurityIssues
	fmt.Fprintf(&b, "\n[::b]Security issues (%d)[::-]\n", len(issues))
	if len(issues) == 0 {
		b.WriteString("  [green]none[white]\n")
	}
	for _, issue := range issues {
		fmt.Fprintf(&b, "  [red]%s[white] %s\n", issue.Type, tview.Escape(truncateString(issue.URL, maxURLDisplay)))
	}
	return b.String()
}

func renderWarnings(warnings []analyzer.Warning) string {
	if len(warnings) == 0 {
		return "[green]No warnings[white]"
	}
	var b strings.Builder
	for _, w := range warnings {
		fmt.Fprintf(&b, "[orange]#%d[white] [yellow]%s[white] %s\n", w.Entry, w.Kind, tview.Escape(w.Message))
	}
	return b.String()
}

// renderEntryDetail shows one entry with its response body formatted for the terminal
func renderEntryDetail(entry har.HAREntry, formatter *format.ContentFormatter) string {
	var b strings.Builder
	if entry.Request != nil {
		fmt.Fprintf(&b, "[yellow]Method:[white] [cyan]%s[white]\n", entry.Request.Method)
		fmt.Fprintf(&b, "[yellow]URL:[white] [blue]%s[white]\n", tview.Escape(entry.Request.URL))
	}
	fmt.Fprintf(&b, "[yellow]Type:[white] %s\n", har.InferResourceType(entry))
	fmt.Fprintf(&b, "[yellow]Started:[white] %s\n", entry.StartedDateTime)
	fmt.Fprintf(&b, "[yellow]Time:[white] %s\n", format.Duration(entry.Time))

	if len(entry.WebSocketMessages) > 0 {
		fmt.Fprintf(&b, "[yellow]WebSocket messages:[white] %d\n", len(entry.WebSocketMessages))
	}

	if entry.Response == nil {
		b.WriteString("\n[dim]No response recorded[white]")
		return b.String()
	}

	resp := entry.Response
	status := fmt.Sprintf("%dxx", resp.Status/100)
	fmt.Fprintf(&b, "[yellow]Status:[white] [%s]%d %s[white]\n", format.StatusColor(status), resp.Status, tview.Escape(resp.StatusText))
	fmt.Fprintf(&b, "[yellow]Content type:[white] [cyan]%s[white]\n", tview.Escape(resp.Content.MimeType))
	fmt.Fprintf(&b, "[yellow]Size:[white] %s\n", format.Bytes(resp.Content.Size))

	body := har.DecodeBase64(resp.Content.Text, resp.Content.Encoding)
	fmt.Fprintf(&b, "\n[yellow]Body:[white]\n%s", formatter.FormatBody(body, resp.Content.MimeType))
	return b.String()
}

func resourceColor(resourceType string) string {
	switch resourceType {
	case "document":
		return "blue"
	case "stylesheet":
		return "green"
	case "script":
		return "yellow"
	case "image":
		return "magenta"
	case "fetch", "xhr":
		return "cyan"
	case "media":
		return "red"
	case har.ResourceTypeWebSocket:
		return "purple"
	default:
		return "white"
	}
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
