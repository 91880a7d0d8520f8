package orch

import (
	"encoding/json"
	"errors"

	"github.com/dkeye/Coedit/internal/domain"
)

type EventType string

// Inbound events.
const (
	EventJoined       EventType = "joined"
	EventDocChange    EventType = "doc:change"
	EventDocSave      EventType = "doc:save"
	EventPeerIntro    EventType = "peer:intro"
	EventPeerOffer    EventType = "peer:offer"
	EventPeerResponse EventType = "peer:response"
)

// Outbound events.
const (
	EventHello      EventType = "hello"
	EventPeerJoined EventType = "peer:joined"
	EventPeerLeft   EventType = "peer:left"
)

var (
	ErrAuthRequired     = errors.New("authentication required")
	ErrUnknownTarget    = errors.New("unknown target")
	ErrMalformedPayload = errors.New("malformed payload")
	ErrUnknownEvent     = errors.New("unknown event")
)

// Event is one decoded inbound frame. Raw holds the whole JSON object,
// including the type field.
type Event struct {
	Type EventType
	Raw  json.RawMessage
}

// ParseEvent decodes the envelope of a frame. Payload fields are decoded later
// by the handler.
func ParseEvent(data []byte) (Event, error) {
	var env struct {
		Type EventType `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return Event{}, errors.Join(ErrMalformedPayload, err)
	}
	if env.Type == "" {
		return Event{}, ErrMalformedPayload
	}
	return Event{Type: env.Type, Raw: json.RawMessage(data)}, nil
}

type helloMsg struct {
	Type EventType      `json:"type"`
	ID   domain.Address `json:"id"`
	Mode domain.Mode    `json:"mode"`
}

// peerPresenceMsg carries peer:joined / peer:left. Collab fills Peer with the
// identity handle, signaling fills ID with the peer address.
type peerPresenceMsg struct {
	Type EventType      `json:"type"`
	Peer string         `json:"peer,omitempty"`
	ID   domain.Address `json:"id,omitempty"`
}

type changeMsg struct {
	Type   EventType       `json:"type"`
	Change json.RawMessage `json:"change"`
}

type signalMsg struct {
	Type   EventType       `json:"type"`
	PeerID domain.Address  `json:"peerId"`
	Signal json.RawMessage `json:"signal"`
}
