package orch

import (
	"encoding/json"

	"github.com/dkeye/Coedit/internal/core"
	"github.com/dkeye/Coedit/internal/domain"
)

// Collab is the document collaboration relay: presence plus change fan out.
// Leaves are announced.
type Collab struct{}

func (Collab) Mode() domain.Mode { return domain.ModeCollab }

func (Collab) Handlers() map[EventType]Handler {
	return map[EventType]Handler{
		EventJoined:    handleJoined,
		EventDocChange: handleChange,
		// Saving is persisted over HTTP; the relay treats it as a change.
		EventDocSave: handleChange,
	}
}

func (Collab) OnLeave(o *Orchestrator, leaver core.MemberSession, room domain.RoomID) {
	notifyLeft(o, leaver, room)
}

func handleJoined(c *Context) error {
	var p struct {
		ID domain.RoomID `json:"id"`
	}
	if err := c.Bind(&p); err != nil {
		return err
	}
	if p.ID == "" {
		return missing("id")
	}
	if !c.Join(p.ID) {
		return nil
	}
	c.Broadcast(p.ID, peerPresenceMsg{Type: EventPeerJoined, Peer: c.Identity().Handle})
	return nil
}

func handleChange(c *Context) error {
	var p struct {
		ID     domain.RoomID   `json:"id"`
		Change json.RawMessage `json:"change"`
	}
	if err := c.Bind(&p); err != nil {
		return err
	}
	if p.ID == "" {
		return missing("id")
	}
	if len(p.Change) == 0 {
		return missing("change")
	}
	c.Broadcast(p.ID, changeMsg{Type: EventDocChange, Change: p.Change})
	return nil
}
