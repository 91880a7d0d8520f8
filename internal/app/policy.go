package app

import (
	"fmt"

	"github.com/dkeye/Coedit/internal/core"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	KickMember
	DropFrame
)

// Policy decides what happens to a member whose send queue is full.
type Policy interface {
	OnBackPressure(member core.MemberSession) BackpressureAction
}

type KickPolicy struct{}

func (KickPolicy) OnBackPressure(core.MemberSession) BackpressureAction { return KickMember }

type DropPolicy struct{}

func (DropPolicy) OnBackPressure(core.MemberSession) BackpressureAction { return DropFrame }

func ParsePolicy(name string) (Policy, error) {
	switch name {
	case "", "kick":
		return KickPolicy{}, nil
	case "drop":
		return DropPolicy{}, nil
	}
	return nil, fmt.Errorf("unknown slow consumer policy %q", name)
}
