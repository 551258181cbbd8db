package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/cnharrison/har-insights/internal/analyzer"
	"github.com/cnharrison/har-insights/internal/har"
)

// Report is the JSON document written by WriteJSON
type Report struct {
	Metrics  analyzer.Metrics   `json:"metrics"`
	Warnings []analyzer.Warning `json:"warnings"`
	Insight  string             `json:"insight,omitempty"`
}

// WriteJSON writes the analysis, and the insight when there is one, as indented JSON
func WriteJSON(w io.Writer, analysis *analyzer.Analysis, insight string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	report := Report{Metrics: analysis.Metrics, Warnings: analysis.Warnings, Insight: insight}
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}
	return nil
}

// GenerateCurlCommand generates a curl command from a HAR entry
func GenerateCurlCommand(entry har.HAREntry) string {
	if entry.Request == nil {
		return ""
	}

	var cmd strings.Builder
	cmd.WriteString(fmt.Sprintf("curl -X %s %s", entry.Request.Method, shellQuote(entry.Request.URL)))

	for _, header := range entry.Request.Headers {
		// HTTP/2 pseudo-headers and host are derived by curl itself
		if strings.EqualFold(header.Name, "host") || strings.HasPrefix(header.Name, ":") {
			continue
		}
		cmd.WriteString(" -H " + shellQuote(header.Name+": "+header.Value))
	}

	if entry.Request.PostData != nil && entry.Request.PostData.Text != "" {
		cmd.WriteString(" --data-raw " + shellQuote(entry.Request.PostData.Text))
	}

	return cmd.String()
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
