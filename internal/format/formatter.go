package format

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/go-xmlfmt/xmlfmt"
	"github.com/rivo/tview"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/yosssi/gohtml"
)

// Body kinds recognised by DetectContentType
const (
	KindJSON   = "json"
	KindHTML   = "html"
	KindXML    = "xml"
	KindText   = "text"
	KindBinary = "binary"
)

var (
	jsonKeyPattern    = regexp.MustCompile(`"([^"\\]*)"(\s*:)`)
	jsonStringPattern = regexp.MustCompile(`:\s*"([^"\\]*)"`)
	jsonNumberPattern = regexp.MustCompile(`:\s*(-?\d+(?:\.\d+)?(?:[eE][+-]?\d+)?)`)
	jsonLiteralPattern = regexp.MustCompile(`:\s*(true|false|null)`)

	markupOpenPattern    = regexp.MustCompile(`(<[^/!?>][^>]*>)`)
	markupClosePattern   = regexp.MustCompile(`(</[^>]+>)`)
	markupCommentPattern = regexp.MustCompile(`(<!--.*?-->)`)
	markupDeclPattern    = regexp.MustCompile(`(<\?[^>]*\?>)`)
)

// maxBodyLength caps how much of a body the detail pane renders
const maxBodyLength = 64 * 1024

// ContentFormatter pretty-prints response and request bodies with tview colour tags
type ContentFormatter struct{}

// NewContentFormatter creates a new content formatter
func NewContentFormatter() *ContentFormatter {
	return &ContentFormatter{}
}

// FormatBody detects the body kind and formats it
func (f *ContentFormatter) FormatBody(content, mimeType string) string {
	return f.FormatContent(content, f.DetectContentType(content, mimeType))
}

// FormatContent formats content of a known kind
func (f *ContentFormatter) FormatContent(content, kind string) string {
	if content == "" {
		return "[dim]No content[white]"
	}

	truncated := false
	if len(content) > maxBodyLength {
		content = content[:maxBodyLength]
		truncated = true
	}

	var out string
	switch kind {
	case KindJSON:
		out = f.formatJSON(content)
	case KindHTML:
		out = f.highlightMarkup(gohtml.Format(content))
	case KindXML:
		out = f.highlightMarkup(xmlfmt.FormatXML(content, "", "  "))
	case KindBinary:
		out = "[dim]Binary content (" + Bytes(int64(len(content))) + ")[white]"
	default:
		out = tview.Escape(content)
	}

	if truncated {
		out += "\n[dim]... truncated[white]"
	}
	return out
}

// DetectContentType picks a body kind from the MIME type, then from the content itself
func (f *ContentFormatter) DetectContentType(content, mimeType string) string {
	lowerMime := strings.ToLower(mimeType)
	switch {
	case strings.Contains(lowerMime, "json"):
		return KindJSON
	case strings.Contains(lowerMime, "html"):
		return KindHTML
	case strings.Contains(lowerMime, "xml"):
		return KindXML
	case strings.HasPrefix(lowerMime, "image/"), strings.HasPrefix(lowerMime, "font/"),
		strings.HasPrefix(lowerMime, "audio/"), strings.HasPrefix(lowerMime, "video/"):
		return KindBinary
	}

	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return KindText
	}

	if (strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[")) && gjson.Valid(trimmed) {
		return KindJSON
	}
	if strings.HasPrefix(trimmed, "<?xml") {
		return KindXML
	}

	detected := http.DetectContentType([]byte(content))
	switch {
	case strings.Contains(detected, "text/html"):
		return KindHTML
	case strings.Contains(detected, "xml"):
		return KindXML
	case strings.HasPrefix(detected, "text/"):
		return KindText
	}
	return KindBinary
}

// formatJSON indents JSON and colours keys, strings, numbers and literals
func (f *ContentFormatter) formatJSON(content string) string {
	if !gjson.Valid(content) {
		return tview.Escape(content)
	}

	result := tview.Escape(string(pretty.Pretty([]byte(content))))
	result = jsonKeyPattern.ReplaceAllString(result, `[cyan]"$1"[white]$2`)
	result = jsonStringPattern.ReplaceAllString(result, `: [green]"$1"[white]`)
	result = jsonNumberPattern.ReplaceAllString(result, `: [yellow]$1[white]`)
	result = jsonLiteralPattern.ReplaceAllString(result, `: [magenta]$1[white]`)
	return strings.TrimRight(result, "\n")
}

func (f *ContentFormatter) highlightMarkup(formatted string) string {
	formatted = tview.Escape(formatted)
	formatted = markupCommentPattern.ReplaceAllString(formatted, `[dim]$1[white]`)
	formatted = markupDeclPattern.ReplaceAllString(formatted, `[magenta]$1[white]`)
	formatted = markupOpenPattern.ReplaceAllString(formatted, `[blue]$1[white]`)
	formatted = markupClosePattern.ReplaceAllString(formatted, `[blue]$1[white]`)
	return formatted
}
