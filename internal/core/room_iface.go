package core

import (
	"github.com/dkeye/Coedit/internal/domain"
)

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SendTo  int
	Dropped []MemberSession
}

type RoomInfo struct {
	ID          domain.RoomID `json:"id"`
	MemberCount int           `json:"member_count"`
}

// Membership is the room <-> connection bimap.
// It never touches transport resources.
type Membership interface {
	Join(conn domain.ConnID, room domain.RoomID) bool
	Leave(conn domain.ConnID, room domain.RoomID) bool
	LeaveAll(conn domain.ConnID) []domain.RoomID

	MembersOf(room domain.RoomID) []domain.ConnID
	RoomsOf(conn domain.ConnID) []domain.RoomID
	List() []RoomInfo
	Len() int
}
