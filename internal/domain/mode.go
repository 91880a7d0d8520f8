package domain

import "fmt"

// Mode selects the relay strategy of a deployment.
type Mode string

const (
	// ModeCollab relays document changes and announces joins and leaves.
	ModeCollab Mode = "collab"
	// ModeSignaling relays WebRTC handshakes; leaves are silent.
	ModeSignaling Mode = "signaling"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeCollab, ModeSignaling:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown relay mode %q", s)
}
