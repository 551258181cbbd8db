package analyzer

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/cnharrison/har-insights/internal/har"
)

const (
	messageTypeBinary  = "binary"
	messageTypeUnknown = "unknown"
)

// discriminatorFields are probed in order for a message type
var discriminatorFields = []string{"cmd", "type"}

// messageType extracts the cmd/type discriminator of a JSON payload.
// Binary frames and payloads that are not JSON fall into the "binary" bucket;
// JSON without a discriminator is "unknown".
func messageType(msg har.WebSocketMessage) string {
	if msg.IsBinary() || !gjson.Valid(msg.Data) {
		return messageTypeBinary
	}
	parsed := gjson.Parse(msg.Data)
	if !parsed.IsObject() {
		return messageTypeUnknown
	}
	for _, field := range discriminatorFields {
		if v := parsed.Get(field); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return messageTypeUnknown
}

// foldWebSocket adds one WebSocket-classified entry to the running aggregates
func (acc *accumulator) foldWebSocket(ec *entryContext) {
	entry := ec.entry
	wm := &acc.metrics.WebSocketMetrics

	wm.Connections++
	for _, msg := range entry.WebSocketMessages {
		wm.MessageCount++
		if msg.Direction() == har.DirectionSent {
			wm.SentMessages++
		} else {
			wm.ReceivedMessages++
		}
		wm.MessageTypes[messageType(msg)]++
		wm.TotalMessageSize += int64(len(msg.Data))
	}
	wm.ConnectionDuration += elapsed(entry)

	if entry.Request == nil {
		return
	}
	for _, h := range entry.Request.Headers {
		if !strings.EqualFold(h.Name, "sec-websocket-protocol") {
			continue
		}
		for _, token := range strings.Split(h.Value, ",") {
			if token = strings.TrimSpace(token); token != "" {
				acc.protocols.Add(token)
			}
		}
	}
}
