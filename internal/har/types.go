package har

import (
	"encoding/json"
	"strings"
)

// ResourceTypeWebSocket is the _resourceType value Chromium writes for WebSocket sessions
const ResourceTypeWebSocket = "websocket"

// HARHeader represents an HTTP header in a HAR file
type HARHeader struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// HARCookie represents an HTTP cookie in a HAR file
type HARCookie struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Domain   string `json:"domain,omitempty"`
	Path     string `json:"path,omitempty"`
	Secure   bool   `json:"secure,omitempty"`
	HTTPOnly bool   `json:"httpOnly,omitempty"`
}

// HARPostData represents POST data in a HAR file
type HARPostData struct {
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`
}

// HARRequest represents an HTTP request in a HAR file
type HARRequest struct {
	Method      string       `json:"method"`
	URL         string       `json:"url"`
	HTTPVersion string       `json:"httpVersion"`
	Headers     []HARHeader  `json:"headers"`
	Cookies     []HARCookie  `json:"cookies"`
	QueryString []HARHeader  `json:"queryString,omitempty"`
	PostData    *HARPostData `json:"postData,omitempty"`
	HeadersSize int64        `json:"headersSize"`
	BodySize    int64        `json:"bodySize"`
}

// HARContent represents response content in a HAR file
type HARContent struct {
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType"`
	Text     string `json:"text,omitempty"`
	Encoding string `json:"encoding,omitempty"`
}

// HARResponse represents an HTTP response in a HAR file
type HARResponse struct {
	Status      int         `json:"status"`
	StatusText  string      `json:"statusText"`
	HTTPVersion string      `json:"httpVersion"`
	Headers     []HARHeader `json:"headers"`
	Cookies     []HARCookie `json:"cookies"`
	Content     HARContent  `json:"content"`
	RedirectURL string      `json:"redirectURL,omitempty"`
	HeadersSize int64       `json:"headersSize"`
	BodySize    int64       `json:"bodySize"`
}

// HARTimings represents timing information in a HAR file
type HARTimings struct {
	Blocked float64 `json:"blocked"`
	DNS     float64 `json:"dns"`
	Connect float64 `json:"connect"`
	Send    float64 `json:"send"`
	Wait    float64 `json:"wait"`
	Receive float64 `json:"receive"`
	SSL     float64 `json:"ssl"`
}

// WebSocketMessage is one frame recorded in Chromium's _webSocketMessages extension
type WebSocketMessage struct {
	Type   string  `json:"type"`
	Time   float64 `json:"time"`
	Opcode int     `json:"opcode"`
	Data   string  `json:"data"`
}

// Message directions as reported by Direction.
const (
	DirectionSent     = "sent"
	DirectionReceived = "received"
)

// Direction normalizes the frame type to DirectionSent or DirectionReceived.
// Anything other than an outgoing frame counts as received.
func (m WebSocketMessage) Direction() string {
	switch strings.ToLower(m.Type) {
	case "send", "sent", "outgoing":
		return DirectionSent
	default:
		return DirectionReceived
	}
}

// IsBinary reports whether the frame was recorded with the binary opcode
func (m WebSocketMessage) IsBinary() bool {
	return m.Opcode == 2
}

// HAREntry represents a single HTTP transaction or WebSocket session in a HAR file.
// Request and Response are pointers so that a missing block can be told apart from
// an empty one.
type HAREntry struct {
	StartedDateTime   string             `json:"startedDateTime"`
	Time              float64            `json:"time"`
	Request           *HARRequest        `json:"request,omitempty"`
	Response          *HARResponse       `json:"response,omitempty"`
	Timings           HARTimings         `json:"timings"`
	ServerIPAddress   string             `json:"serverIPAddress,omitempty"`
	ResourceType      string             `json:"_resourceType,omitempty"`
	WebSocketMessages []WebSocketMessage `json:"_webSocketMessages,omitempty"`

	// DecodeErr is set when the raw entry is not a JSON object; the rest of the
	// entry is zero.
	DecodeErr error `json:"-"`
	// FieldErrors lists members that had the wrong type and were left zero
	FieldErrors []FieldError `json:"-"`
}

// HARCreator identifies the tool that produced the capture
type HARCreator struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// HARPage is a page grouping referenced by entries
type HARPage struct {
	StartedDateTime string `json:"startedDateTime"`
	ID              string `json:"id"`
	Title           string `json:"title"`
}

// HARLog represents the log object in a HAR file.
// Entries is nil when the entries key is absent or null.
type HARLog struct {
	Version string     `json:"version"`
	Creator HARCreator `json:"creator"`
	Pages   []HARPage  `json:"pages,omitempty"`
	Entries []HAREntry `json:"entries"`
}

// UnmarshalJSON decodes entries one at a time so that an entry that is not an
// object does not discard the whole log.
func (l *HARLog) UnmarshalJSON(data []byte) error {
	var raw struct {
		Version string            `json:"version"`
		Creator HARCreator        `json:"creator"`
		Pages   []HARPage         `json:"pages"`
		Entries []json.RawMessage `json:"entries"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	l.Version = raw.Version
	l.Creator = raw.Creator
	l.Pages = raw.Pages
	l.Entries = nil
	if raw.Entries == nil {
		return nil
	}

	l.Entries = make([]HAREntry, len(raw.Entries))
	for i, msg := range raw.Entries {
		var entry HAREntry
		if err := json.Unmarshal(msg, &entry); err != nil {
			l.Entries[i] = HAREntry{DecodeErr: err}
			continue
		}
		l.Entries[i] = entry
	}
	return nil
}

// HARFile represents the root HAR file structure
type HARFile struct {
	Log *HARLog `json:"log"`
}

// Header returns the value of the first header matching name, case-insensitively
func Header(headers []HARHeader, name string) (string, bool) {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}
