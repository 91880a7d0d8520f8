package core

import "github.com/dkeye/Coedit/internal/domain"

// MemberSession binds domain.Member and its transport endpoint.
// This is what the relay stores and fans out to.
type MemberSession interface {
	Meta() *domain.Member
	Signal() SignalConnection
}
