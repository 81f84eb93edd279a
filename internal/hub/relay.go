package hub

import (
	"bytes"
	"encoding/json"
	"log/slog"

	"github.com/mrmateussiilva/api-sgp/internal/metrics"
)

// rawPong is the bare-text liveness reply some clients send instead of the
// JSON form. Both are accepted.
var rawPong = []byte(`"pong"`)

// HandleInbound classifies one frame received from a subscriber.
//
// Liveness replies are swallowed. A JSON object carrying "broadcast": true is
// a relay request: the flag is stripped and the remaining object forwarded
// verbatim to every other handle. Anything else is dropped silently; this is
// a transport-level protocol and malformed input must never tear down the
// connection loop.
func (h *Hub) HandleInbound(c *Client, frame []byte) {
	trimmed := bytes.TrimSpace(frame)
	if len(trimmed) == 0 {
		return
	}
	if bytes.Equal(trimmed, rawPong) || bytes.Equal(trimmed, []byte("pong")) {
		return
	}

	var msg map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &msg); err != nil {
		slog.Debug("dropping malformed frame", "client_id", c.ID.String())
		return
	}

	if t, ok := msg["type"]; ok && bytes.Equal(bytes.TrimSpace(t), rawPong) {
		return
	}

	flag, ok := msg["broadcast"]
	if !ok {
		return
	}
	var relay bool
	if err := json.Unmarshal(flag, &relay); err != nil || !relay {
		return
	}

	delete(msg, "broadcast")
	payload, err := json.Marshal(msg)
	if err != nil {
		slog.Debug("dropping unserializable relay frame", "client_id", c.ID.String())
		return
	}

	metrics.RelayMessagesTotal.Inc()
	h.BroadcastExcept(payload, c)
}
