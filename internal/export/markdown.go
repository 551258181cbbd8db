package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cnharrison/har-insights/internal/analyzer"
	"github.com/cnharrison/har-insights/internal/format"
)

// GenerateMarkdownReport renders an analysis as a Markdown document. The
// insight section is omitted when insight is empty.
func GenerateMarkdownReport(metrics analyzer.Metrics, warnings []analyzer.Warning, insight string) string {
	var report strings.Builder

	report.WriteString("# HAR Analysis Report\n\n")

	report.WriteString("## Overview\n\n")
	report.WriteString(fmt.Sprintf("- **Requests:** %d\n", metrics.TotalRequests))
	report.WriteString(fmt.Sprintf("- **Total Size:** %s\n", format.Bytes(metrics.TotalSize)))
	report.WriteString(fmt.Sprintf("- **Total Time:** %s\n", format.Duration(metrics.TotalTime)))
	report.WriteString(fmt.Sprintf("- **Average Response Time:** %s\n", format.Duration(metrics.Primary.AvgResponseTime)))
	report.WriteString(fmt.Sprintf("- **Error Rate:** %s (%d errors)\n\n", format.Percent(metrics.Primary.ErrorRate), metrics.Selected.ErrorCount))

	if len(metrics.StatusCodes) > 0 {
		report.WriteString("## Status Codes\n\n")
		writeHistogram(&report, "Status", metrics.StatusCodes)
	}

	if len(metrics.RequestsByType) > 0 {
		report.WriteString("## Resource Types\n\n")
		writeHistogram(&report, "Type", metrics.RequestsByType)
	}

	hm := metrics.HTTPMetrics
	if len(hm.SlowestRequests) > 0 {
		report.WriteString("## Slowest Requests\n\n")
		report.WriteString("| # | Time | Type | URL |\n|---|---|---|---|\n")
		for i, r := range hm.SlowestRequests {
			report.WriteString(fmt.Sprintf("| %d | %s | %s | `%s` |\n", i+1, format.Duration(r.Time), r.Type, r.URL))
		}
		report.WriteString("\n")
	}

	if len(hm.LargestRequests) > 0 {
		report.WriteString("## Largest Requests\n\n")
		report.WriteString("| # | Size | Type | URL |\n|---|---|---|---|\n")
		for i, r := range hm.LargestRequests {
			report.WriteString(fmt.Sprintf("| %d | %s | %s | `%s` |\n", i+1, format.Bytes(r.Size), r.Type, r.URL))
		}
		report.WriteString("\n")
	}

	if hm.Requests > 0 {
		report.WriteString("## HTTP\n\n")
		report.WriteString(fmt.Sprintf("- **Requests:** %d\n", hm.Requests))
		report.WriteString(fmt.Sprintf("- **Average Response Time:** %s\n", format.Duration(hm.AvgResponseTime)))
		report.WriteString(fmt.Sprintf("- **Cache Hits / Misses:** %d / %d\n\n", hm.CacheHits, hm.CacheMisses))
	}

	if len(hm.SecurityIssues) > 0 {
		report.WriteString("## Security\n\n")
		for _, issue := range hm.SecurityIssues {
			report.WriteString(fmt.Sprintf("- **%s:** `%s`\n", issue.Type, issue.URL))
		}
		report.WriteString("\n")
	}

	wm := metrics.WebSocketMetrics
	if wm.Connections > 0 {
		report.WriteString("## WebSocket\n\n")
		report.WriteString(fmt.Sprintf("- **Connections:** %d\n", wm.Connections))
		report.WriteString(fmt.Sprintf("- **Messages:** %d (%d sent, %d received)\n", wm.MessageCount, wm.SentMessages, wm.ReceivedMessages))
		report.WriteString(fmt.Sprintf("- **Payload:** %s total, %s average\n", format.Bytes(wm.TotalMessageSize), format.Bytes(int64(wm.AverageMessageSize))))
		report.WriteString(fmt.Sprintf("- **Connection Time:** %s\n", format.Duration(wm.ConnectionDuration)))
		if len(wm.Protocols) > 0 {
			report.WriteString(fmt.Sprintf("- **Protocols:** %s\n", strings.Join(wm.Protocols, ", ")))
		}
		report.WriteString("\n")
		if len(wm.MessageTypes) > 0 {
			writeHistogram(&report, "Message Type", wm.MessageTypes)
		}
	}

	if len(metrics.Domains) > 0 {
		report.WriteString("## Domains\n\n")
		for _, d := range metrics.Domains {
			report.WriteString(fmt.Sprintf("- %s\n", d))
		}
		report.WriteString("\n")
	}

	if len(warnings) > 0 {
		report.WriteString("## Warnings\n\n")
		for _, w := range warnings {
			report.WriteString(fmt.Sprintf("- %s\n", w))
		}
		report.WriteString("\n")
	}

	if insight = strings.TrimSpace(insight); insight != "" {
		report.WriteString("## Insights\n\n")
		report.WriteString(insight)
		report.WriteString("\n\n")
	}

	report.WriteString("---\n*Generated by har-insights*\n")

	return report.String()
}

// writeHistogram writes counts largest first, ties by key
func writeHistogram(report *strings.Builder, label string, counts map[string]int) {
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

	report.WriteString(fmt.Sprintf("| %s | Count |\n|---|---|\n", label))
	for _, k := range keys {
		report.WriteString(fmt.Sprintf("| %s | %d |\n", k, counts[k]))
	}
	report.WriteString("\n")
}
