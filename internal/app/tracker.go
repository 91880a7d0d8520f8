package app

import (
	"sort"
	"sync"

	"github.com/dkeye/Coedit/internal/core"
	"github.com/dkeye/Coedit/internal/domain"
	"github.com/rs/zerolog/log"
)

type memberSet map[domain.ConnID]struct{}

type roomSet map[domain.RoomID]struct{}

// Tracker is the in-memory room membership bimap.
// rooms and conns are always mutated together under mu.
type Tracker struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]memberSet
	conns map[domain.ConnID]roomSet
}

var _ core.Membership = (*Tracker)(nil)

func NewTracker() *Tracker {
	return &Tracker{
		rooms: make(map[domain.RoomID]memberSet),
		conns: make(map[domain.ConnID]roomSet),
	}
}

// Join reports whether the membership changed.
func (t *Tracker) Join(conn domain.ConnID, room domain.RoomID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	members, ok := t.rooms[room]
	if !ok {
		members = make(memberSet)
		t.rooms[room] = members
	}
	if _, ok := members[conn]; ok {
		return false
	}
	members[conn] = struct{}{}

	joined, ok := t.conns[conn]
	if !ok {
		joined = make(roomSet)
		t.conns[conn] = joined
	}
	joined[room] = struct{}{}

	log.Debug().Str("module", "app.tracker").Str("conn", string(conn)).Str("room", string(room)).Msg("joined")
	return true
}

// Leave reports whether the membership changed.
func (t *Tracker) Leave(conn domain.ConnID, room domain.RoomID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.leaveLocked(conn, room) {
		return false
	}
	log.Debug().Str("module", "app.tracker").Str("conn", string(conn)).Str("room", string(room)).Msg("left")
	return true
}

// LeaveAll removes conn from every room in one step and returns the rooms it left.
func (t *Tracker) LeaveAll(conn domain.ConnID) []domain.RoomID {
	t.mu.Lock()
	defer t.mu.Unlock()

	joined := t.conns[conn]
	left := make([]domain.RoomID, 0, len(joined))
	for room := range joined {
		left = append(left, room)
	}
	sortRooms(left)
	for _, room := range left {
		t.leaveLocked(conn, room)
	}
	if len(left) > 0 {
		log.Debug().Str("module", "app.tracker").Str("conn", string(conn)).Int("rooms", len(left)).Msg("left all rooms")
	}
	return left
}

func (t *Tracker) leaveLocked(conn domain.ConnID, room domain.RoomID) bool {
	members, ok := t.rooms[room]
	if !ok {
		return false
	}
	if _, ok := members[conn]; !ok {
		return false
	}
	delete(members, conn)
	if len(members) == 0 {
		delete(t.rooms, room)
	}
	if joined, ok := t.conns[conn]; ok {
		delete(joined, room)
		if len(joined) == 0 {
			delete(t.conns, conn)
		}
	}
	return true
}

func (t *Tracker) MembersOf(room domain.RoomID) []domain.ConnID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	members := t.rooms[room]
	out := make([]domain.ConnID, 0, len(members))
	for conn := range members {
		out = append(out, conn)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (t *Tracker) RoomsOf(conn domain.ConnID) []domain.RoomID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	joined := t.conns[conn]
	out := make([]domain.RoomID, 0, len(joined))
	for room := range joined {
		out = append(out, room)
	}
	sortRooms(out)
	return out
}

func (t *Tracker) List() []core.RoomInfo {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]core.RoomInfo, 0, len(t.rooms))
	for id, members := range t.rooms {
		out = append(out, core.RoomInfo{ID: id, MemberCount: len(members)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len is the number of non-empty rooms.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rooms)
}

func sortRooms(rooms []domain.RoomID) {
	sort.Slice(rooms, func(i, j int) bool { return rooms[i] < rooms[j] })
}
