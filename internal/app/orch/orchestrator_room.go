package orch

import (
	"github.com/dkeye/Coedit/internal/core"
	"github.com/dkeye/Coedit/internal/domain"
	"github.com/rs/zerolog/log"
)

// Disconnect tears a connection down: it leaves every room, releases its
// addresses, closes its transport and lets the strategy notify the rooms it
// left. It reports false when the connection was already gone.
func (o *Orchestrator) Disconnect(id domain.ConnID) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.disconnectLocked(id)
}

func (o *Orchestrator) disconnectLocked(id domain.ConnID) bool {
	sess, cancel, ok := o.Registry.Unbind(id)
	if !ok {
		return false
	}
	left := o.Rooms.LeaveAll(id)
	o.Directory.Release(id)
	sess.Signal().Close()
	if cancel != nil {
		cancel()
	}
	log.Info().Str("module", "orch").Str("mode", string(o.Mode())).Str("conn", string(id)).Int("rooms", len(left)).Msg("disconnected")

	for _, room := range left {
		o.strategy.OnLeave(o, sess, room)
	}
	o.refreshGaugesLocked()
	return true
}

// KickBySID removes a connection from one room without closing it.
func (o *Orchestrator) KickBySID(id domain.ConnID, room domain.RoomID) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	sess, ok := o.Registry.GetSession(id)
	if !ok || !o.Rooms.Leave(id, room) {
		return false
	}
	o.strategy.OnLeave(o, sess, room)
	o.refreshGaugesLocked()
	return true
}

// EvictRoom removes every member from room, leaving their connections open.
func (o *Orchestrator) EvictRoom(room domain.RoomID) int {
	n := 0
	for _, id := range o.Rooms.MembersOf(room) {
		if o.KickBySID(id, room) {
			n++
		}
	}
	return n
}

func (o *Orchestrator) joinLocked(id domain.ConnID, room domain.RoomID) bool {
	changed := o.Rooms.Join(id, room)
	if changed {
		log.Info().Str("module", "orch").Str("conn", string(id)).Str("room", string(room)).Msg("added to room")
		o.refreshGaugesLocked()
	}
	return changed
}

// notifyLeft is the collab leave notification.
func notifyLeft(o *Orchestrator, leaver core.MemberSession, room domain.RoomID) {
	o.broadcastLocked(leaver.Meta().ID, room, peerPresenceMsg{
		Type: EventPeerLeft,
		Peer: leaver.Meta().Identity.Handle,
	}, EventPeerLeft)
}
