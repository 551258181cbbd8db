package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cnharrison/har-insights/internal/analyzer"
	"github.com/cnharrison/har-insights/internal/har"
)

func sampleAnalysis(t *testing.T) *analyzer.Analysis {
	t.Helper()
	doc := &har.HARFile{Log: &har.HARLog{Entries: []har.HAREntry{
		{
			StartedDateTime: "2024-01-01T00:00:00.000Z",
			Time:            1500,
			ResourceType:    "script",
			Request:         &har.HARRequest{Method: "GET", URL: "http://cdn.example.com/app.js"},
			Response: &har.HARResponse{
				Status:   200,
				BodySize: 2_000_000,
				Headers:  []har.HARHeader{{Name: "Cache-Control", Value: "max-age=60"}},
			},
		},
		{
			StartedDateTime: "2024-01-01T00:00:01.000Z",
			Time:            20,
			ResourceType:    "fetch",
			Request:         &har.HARRequest{Method: "POST", URL: "https://api.example.com/login"},
			Response:        &har.HARResponse{Status: 401},
		},
		{
			StartedDateTime: "2024-01-01T00:00:02.000Z",
			Time:            300,
			ResourceType:    "websocket",
			Request: &har.HARRequest{
				Method:  "GET",
				URL:     "wss://live.example.com/ws",
				Headers: []har.HARHeader{{Name: "Sec-WebSocket-Protocol", Value: "graphql-ws"}},
			},
			WebSocketMessages: []har.WebSocketMessage{
				{Type: "send", Opcode: 1, Data: `{"type":"subscribe"}`},
				{Type: "receive", Opcode: 1, Data: `{"type":"next"}`},
			},
		},
		{Request: &har.HARRequest{Method: "GET", URL: "::bad"}},
	}}}

	analysis, err := analyzer.Analyze(doc)
	require.NoError(t, err)
	return analysis
}

func TestGenerateMarkdownReport(t *testing.T) {
	analysis := sampleAnalysis(t)

	report := GenerateMarkdownReport(analysis.Metrics, analysis.Warnings, "Cache your scripts.")

	for _, section := range []string{
		"# HAR Analysis Report",
		"## Overview",
		"## Status Codes",
		"## Resource Types",
		"## Slowest Requests",
		"## Largest Requests",
		"## Security",
		"## WebSocket",
		"## Domains",
		"## Warnings",
		"## Insights",
	} {
		assert.Contains(t, report, section)
	}

	assert.Contains(t, report, "- **Requests:** 4")
	assert.Contains(t, report, "http://cdn.example.com/app.js")
	assert.Contains(t, report, "insecure-protocol")
	assert.Contains(t, report, "graphql-ws")
	assert.Contains(t, report, "Cache your scripts.")
	assert.Contains(t, report, "invalid-url")
}

func TestGenerateMarkdownReport_EmptyMetrics(t *testing.T) {
	analysis, err := analyzer.Analyze(&har.HARFile{Log: &har.HARLog{Entries: []har.HAREntry{}}})
	require.NoError(t, err)

	report := GenerateMarkdownReport(analysis.Metrics, nil, "  ")

	assert.Contains(t, report, "- **Requests:** 0")
	assert.NotContains(t, report, "## Slowest Requests")
	assert.NotContains(t, report, "## WebSocket")
	assert.NotContains(t, report, "## Insights")
	assert.NotContains(t, report, "NaN")
}

func TestWriteJSON(t *testing.T) {
	analysis := sampleAnalysis(t)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, analysis, ""))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Contains(t, decoded, "metrics")
	assert.Contains(t, decoded, "warnings")
	assert.NotContains(t, decoded, "insight")

	metrics := decoded["metrics"].(map[string]any)
	for _, key := range []string{"totalRequests", "primary", "selected", "timeseries", "requestsByType", "statusCodes", "domains", "httpMetrics", "websocketMetrics"} {
		assert.Contains(t, metrics, key)
	}
	assert.True(t, strings.HasPrefix(buf.String(), "{\n  "), "expected indented output")
}

func TestWriteJSON_WithInsight(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleAnalysis(t), "- cache more"))

	var decoded Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "- cache more", decoded.Insight)
}

func TestGenerateCurlCommand(t *testing.T) {
	entry := har.HAREntry{
		Request: &har.HARRequest{
			Method: "POST",
			URL:    "https://api.example.com/items?q=1",
			Headers: []har.HARHeader{
				{Name: ":authority", Value: "api.example.com"},
				{Name: "Host", Value: "api.example.com"},
				{Name: "Content-Type", Value: "application/json"},
			},
			PostData: &har.HARPostData{MimeType: "application/json", Text: `{"name":"it's"}`},
		},
	}

	cmd := GenerateCurlCommand(entry)

	assert.Equal(t,
		`curl -X POST 'https://api.example.com/items?q=1' -H 'Content-Type: application/json' --data-raw '{"name":"it'\''s"}'`,
		cmd)
	assert.Empty(t, GenerateCurlCommand(har.HAREntry{}))
}
