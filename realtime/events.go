// ABOUTME: Realtime event names and envelope shapes
// ABOUTME: Matches the backend's pushed call/emergency notifications
package realtime

import (
	"encoding/json"
	"time"
)

// Events pushed by the server.
const (
	EventCallInitiated      = "call_initiated"
	EventCallStatusUpdate   = "call_status_update"
	EventConversationUpdate = "conversation_update"
	EventCallCompleted      = "call_completed"
	EventEmergencyDetected  = "emergency_detected"
	EventEmergencyProtocol  = "emergency_protocol_activated"
)

// Events emitted by this client.
const (
	eventJoinCallRoom  = "join_call_room"
	eventLeaveCallRoom = "leave_call_room"
)

// Envelope is the wire shape in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Event is what subscribers receive: the payload verbatim, plus when this
// client saw it. No ordering or delivery guarantees are added on top of the
// transport.
type Event struct {
	Name       string
	Data       json.RawMessage
	ReceivedAt time.Time
}

// Decode unmarshals the payload into out.
func (e Event) Decode(out any) error {
	return json.Unmarshal(e.Data, out)
}

type roomPayload struct {
	CallID int `json:"call_id"`
}
