package streaming

import (
	"encoding/json"

	"github.com/eagleglass/airsim/pkg/core"
)

// Message type constants matching the streaming protocol.
const (
	TypeStartSession = "start_session"
	TypeEndSession   = "end_session"
	TypeEvent        = "event"
	TypeSnapshot     = "snapshot"
	TypeAck          = "ack"
)

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AckMessage is the server's acknowledgement response.
type AckMessage struct {
	Type string `json:"type"` // always "ack"
	For  string `json:"for"`  // the message type being acknowledged
}

// StartSessionPayload announces a new run to the viewer.
type StartSessionPayload struct {
	Session *core.Session `json:"session"`
}

// SnapshotPayload carries a full state snapshot at a tick.
type SnapshotPayload struct {
	Tick int           `json:"tick"`
	Data core.Snapshot `json:"data"`
}

// NewEnvelope marshals payload under msgType.
func NewEnvelope(msgType string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Type: msgType, Payload: raw}, nil
}
