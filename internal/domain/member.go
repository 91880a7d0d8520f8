package domain

import "github.com/google/uuid"

type ConnID string

// NewConnID returns a fresh random connection id.
func NewConnID() ConnID { return ConnID(uuid.NewString()) }

// Member represents one live connection's meta.
// No transport or lifecycle logic here.
type Member struct {
	ID       ConnID
	Identity Identity
}

func NewMember(id ConnID, identity Identity) *Member {
	return &Member{ID: id, Identity: identity}
}
