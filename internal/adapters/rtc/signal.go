// Package rtc knows just enough WebRTC to vet the handshake blobs the relay
// forwards and to hand ICE servers to clients. Media never touches the server.
package rtc

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pion/webrtc/v4"
)

var ErrInvalidSignal = errors.New("invalid signal")

// SignalKind classifies a signaling blob as sent by simple-peer style clients.
type SignalKind string

const (
	KindOffer       SignalKind = "offer"
	KindAnswer      SignalKind = "answer"
	KindPranswer    SignalKind = "pranswer"
	KindRollback    SignalKind = "rollback"
	KindCandidate   SignalKind = "candidate"
	KindRenegotiate SignalKind = "renegotiate"
	KindTransceiver SignalKind = "transceiverRequest"
)

type probe struct {
	Type      string          `json:"type"`
	SDP       string          `json:"sdp"`
	Candidate json.RawMessage `json:"candidate"`
}

// Inspect parses raw and reports its kind. Session descriptions must carry
// SDP that pion can parse; candidates must decode as ICECandidateInit.
func Inspect(raw json.RawMessage) (SignalKind, error) {
	var p probe
	if err := json.Unmarshal(raw, &p); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSignal, err)
	}

	if len(p.Candidate) > 0 && string(p.Candidate) != "null" {
		var c webrtc.ICECandidateInit
		if err := json.Unmarshal(p.Candidate, &c); err != nil {
			return "", fmt.Errorf("%w: candidate: %v", ErrInvalidSignal, err)
		}
		return KindCandidate, nil
	}

	switch SignalKind(p.Type) {
	case KindOffer, KindAnswer, KindPranswer:
		desc := webrtc.SessionDescription{Type: webrtc.NewSDPType(p.Type), SDP: p.SDP}
		if strings.TrimSpace(p.SDP) == "" {
			return "", fmt.Errorf("%w: empty sdp", ErrInvalidSignal)
		}
		if _, err := desc.Unmarshal(); err != nil {
			return "", fmt.Errorf("%w: sdp: %v", ErrInvalidSignal, err)
		}
		return SignalKind(p.Type), nil
	case KindRollback, KindRenegotiate, KindTransceiver:
		return SignalKind(p.Type), nil
	}
	return "", fmt.Errorf("%w: unknown type %q", ErrInvalidSignal, p.Type)
}

// ValidateSignal is Inspect without the kind.
func ValidateSignal(raw json.RawMessage) error {
	_, err := Inspect(raw)
	return err
}
