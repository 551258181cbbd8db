package har

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FieldError records an entry field whose value could not be decoded. The
// field is left at its zero value and the rest of the entry is kept.
type FieldError struct {
	Path string
	Err  error
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// fieldDecoder decodes the members of a JSON object one at a time, collecting
// a FieldError for each member of the wrong shape
type fieldDecoder struct {
	errs []FieldError
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func objectMembers(raw json.RawMessage) (map[string]json.RawMessage, error) {
	if isNull(raw) {
		return nil, fmt.Errorf("expected object, got null")
	}
	var members map[string]json.RawMessage
	if err := json.Unmarshal(raw, &members); err != nil {
		return nil, fmt.Errorf("expected object: %w", err)
	}
	return members, nil
}

func (d *fieldDecoder) fail(path string, err error) {
	d.errs = append(d.errs, FieldError{Path: path, Err: err})
}

// decodeField stores members[key] into dst. Absent and null members leave dst untouched.
func decodeField[T any](d *fieldDecoder, members map[string]json.RawMessage, prefix, key string, dst *T) {
	raw, ok := members[key]
	if !ok || isNull(raw) {
		return
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		d.fail(prefix+key, err)
		return
	}
	*dst = v
}

// object returns the members of members[key], or nil when it is absent, null
// or not an object
func (d *fieldDecoder) object(members map[string]json.RawMessage, prefix, key string) map[string]json.RawMessage {
	raw, ok := members[key]
	if !ok || isNull(raw) {
		return nil
	}
	sub, err := objectMembers(raw)
	if err != nil {
		d.fail(prefix+key, err)
		return nil
	}
	return sub
}

func (d *fieldDecoder) request(m map[string]json.RawMessage) *HARRequest {
	const p = "request."
	r := &HARRequest{}
	decodeField(d, m, p, "method", &r.Method)
	decodeField(d, m, p, "url", &r.URL)
	decodeField(d, m, p, "httpVersion", &r.HTTPVersion)
	decodeField(d, m, p, "headers", &r.Headers)
	decodeField(d, m, p, "cookies", &r.Cookies)
	decodeField(d, m, p, "queryString", &r.QueryString)
	decodeField(d, m, p, "postData", &r.PostData)
	decodeField(d, m, p, "headersSize", &r.HeadersSize)
	decodeField(d, m, p, "bodySize", &r.BodySize)
	return r
}

func (d *fieldDecoder) response(m map[string]json.RawMessage) *HARResponse {
	const p = "response."
	r := &HARResponse{}
	decodeField(d, m, p, "status", &r.Status)
	decodeField(d, m, p, "statusText", &r.StatusText)
	decodeField(d, m, p, "httpVersion", &r.HTTPVersion)
	decodeField(d, m, p, "headers", &r.Headers)
	decodeField(d, m, p, "cookies", &r.Cookies)
	decodeField(d, m, p, "redirectURL", &r.RedirectURL)
	decodeField(d, m, p, "headersSize", &r.HeadersSize)
	decodeField(d, m, p, "bodySize", &r.BodySize)
	if c := d.object(m, p, "content"); c != nil {
		const cp = p + "content."
		decodeField(d, c, cp, "size", &r.Content.Size)
		decodeField(d, c, cp, "mimeType", &r.Content.MimeType)
		decodeField(d, c, cp, "text", &r.Content.Text)
		decodeField(d, c, cp, "encoding", &r.Content.Encoding)
	}
	return r
}

// webSocketMessages keeps every frame that is an object, even when some of its
// members are unusable
func (d *fieldDecoder) webSocketMessages(members map[string]json.RawMessage) []WebSocketMessage {
	const key = "_webSocketMessages"
	var frames []json.RawMessage
	decodeField(d, members, "", key, &frames)
	if len(frames) == 0 {
		return nil
	}

	msgs := make([]WebSocketMessage, 0, len(frames))
	for i, raw := range frames {
		prefix := fmt.Sprintf("%s[%d]", key, i)
		m, err := objectMembers(raw)
		if err != nil {
			d.fail(prefix, err)
			continue
		}
		var msg WebSocketMessage
		decodeField(d, m, prefix+".", "type", &msg.Type)
		decodeField(d, m, prefix+".", "time", &msg.Time)
		decodeField(d, m, prefix+".", "opcode", &msg.Opcode)
		decodeField(d, m, prefix+".", "data", &msg.Data)
		msgs = append(msgs, msg)
	}
	return msgs
}

// UnmarshalJSON decodes an entry member by member. Only a value that is not a
// JSON object is an error; members of the wrong type are reported in FieldErrors.
func (e *HAREntry) UnmarshalJSON(data []byte) error {
	members, err := objectMembers(data)
	if err != nil {
		return err
	}

	d := &fieldDecoder{}
	out := HAREntry{}
	decodeField(d, members, "", "startedDateTime", &out.StartedDateTime)
	decodeField(d, members, "", "time", &out.Time)
	if m := d.object(members, "", "timings"); m != nil {
		const p = "timings."
		decodeField(d, m, p, "blocked", &out.Timings.Blocked)
		decodeField(d, m, p, "dns", &out.Timings.DNS)
		decodeField(d, m, p, "connect", &out.Timings.Connect)
		decodeField(d, m, p, "send", &out.Timings.Send)
		decodeField(d, m, p, "wait", &out.Timings.Wait)
		decodeField(d, m, p, "receive", &out.Timings.Receive)
		decodeField(d, m, p, "ssl", &out.Timings.SSL)
	}
	decodeField(d, members, "", "serverIPAddress", &out.ServerIPAddress)
	decodeField(d, members, "", "_resourceType", &out.ResourceType)
	if m := d.object(members, "", "request"); m != nil {
		out.Request = d.request(m)
	}
	if m := d.object(members, "", "response"); m != nil {
		out.Response = d.response(m)
	}
	out.WebSocketMessages = d.webSocketMessages(members)
	out.FieldErrors = d.errs

	*e = out
	return nil
}
