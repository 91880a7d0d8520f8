package orch

import (
	"encoding/json"
	"fmt"

	"github.com/dkeye/Coedit/internal/core"
	"github.com/dkeye/Coedit/internal/domain"
)

// Signaling relays WebRTC handshakes between two addressed connections.
// Leaves are silent.
type Signaling struct{}

func (Signaling) Mode() domain.Mode { return domain.ModeSignaling }

func (Signaling) Handlers() map[EventType]Handler {
	return map[EventType]Handler{
		EventPeerIntro:    handleIntro,
		EventPeerOffer:    forwardSignal(EventPeerOffer),
		EventPeerResponse: forwardSignal(EventPeerResponse),
	}
}

func (Signaling) OnLeave(*Orchestrator, core.MemberSession, domain.RoomID) {}

// senderAddress picks the address the sender is known by: the client supplied
// one when trusted, otherwise the connection id.
func (c *Context) senderAddress(claimed domain.Address) domain.Address {
	if c.relay.trustClientIDs && claimed != "" {
		return claimed
	}
	return domain.Address(c.Conn())
}

func handleIntro(c *Context) error {
	var p struct {
		ID     domain.RoomID  `json:"id"`
		PeerID domain.Address `json:"peerId"`
	}
	if err := c.Bind(&p); err != nil {
		return err
	}
	if p.ID == "" {
		return missing("id")
	}
	addr := c.senderAddress(p.PeerID)
	if err := c.relay.Directory.Claim(c.Conn(), addr); err != nil {
		return fmt.Errorf("intro %s: %w", addr, err)
	}
	if !c.Join(p.ID) {
		return nil
	}
	c.Broadcast(p.ID, peerPresenceMsg{Type: EventPeerJoined, ID: addr})
	return nil
}

func forwardSignal(ev EventType) Handler {
	return func(c *Context) error {
		var p struct {
			PeerID domain.Address  `json:"peerId"`
			FromID domain.Address  `json:"fromId"`
			Signal json.RawMessage `json:"signal"`
		}
		if err := c.Bind(&p); err != nil {
			return err
		}
		if p.PeerID == "" {
			return missing("peerId")
		}
		if len(p.Signal) == 0 {
			return missing("signal")
		}
		if v := c.relay.validateSignal; v != nil {
			if err := v(p.Signal); err != nil {
				return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
			}
		}
		target, ok := c.relay.Directory.Resolve(p.PeerID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownTarget, p.PeerID)
		}
		c.SendTo(target, signalMsg{Type: ev, PeerID: c.senderAddress(p.FromID), Signal: p.Signal})
		return nil
	}
}
