package orch

import (
	"github.com/dkeye/Coedit/internal/core"
	"github.com/dkeye/Coedit/internal/domain"
)

// Strategy is the mode specific part of a relay: which events it accepts
// and what remaining members hear when someone leaves a room.
type Strategy interface {
	Mode() domain.Mode
	Handlers() map[EventType]Handler
	// OnLeave runs with the relay lock held, after leaver was removed from room.
	OnLeave(o *Orchestrator, leaver core.MemberSession, room domain.RoomID)
}

func NewStrategy(mode domain.Mode) Strategy {
	if mode == domain.ModeSignaling {
		return Signaling{}
	}
	return Collab{}
}
