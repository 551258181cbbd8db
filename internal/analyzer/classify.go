package analyzer

import (
	"strings"

	"github.com/cnharrison/har-insights/internal/har"
)

// Kind tells HTTP exchanges and WebSocket sessions apart
type Kind int

const (
	KindHTTP Kind = iota
	KindWebSocket
)

func (k Kind) String() string {
	if k == KindWebSocket {
		return "websocket"
	}
	return "http"
}

// Classification is the outcome of Classify
type Classification struct {
	Kind           Kind
	NormalizedSize int64
}

// Classify decides whether entry is a WebSocket session and computes its size.
// HTTP size is the response body size clamped at zero; HAR writers use -1 and 0
// for cached or unknown bodies. WebSocket size is the total payload length of the
// recorded messages.
func Classify(entry har.HAREntry) Classification {
	if strings.EqualFold(entry.ResourceType, har.ResourceTypeWebSocket) {
		var size int64
		for _, msg := range entry.WebSocketMessages {
			size += int64(len(msg.Data))
		}
		return Classification{Kind: KindWebSocket, NormalizedSize: size}
	}

	var size int64
	if entry.Response != nil && entry.Response.BodySize > 0 {
		size = entry.Response.BodySize
	}
	return Classification{Kind: KindHTTP, NormalizedSize: size}
}

// resourceType is the bucket key for an HTTP entry
func resourceType(entry har.HAREntry) string {
	if entry.ResourceType == "" {
		return "other"
	}
	return entry.ResourceType
}

// elapsed returns the entry time in milliseconds, never negative
func elapsed(entry har.HAREntry) float64 {
	if entry.Time < 0 {
		return 0
	}
	return entry.Time
}

func requestURL(entry har.HAREntry) string {
	if entry.Request == nil {
		return ""
	}
	return entry.Request.URL
}
