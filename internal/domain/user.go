// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"strings"
)

const MaxHandleLen = 255

var (
	ErrHandleTooLong = errors.New("identity handle too long")
	ErrHandleEmpty   = errors.New("identity handle empty")
)

// Identity is the verified user handle attached to a connection by the
// identity provider. The zero value is an anonymous connection.
type Identity struct {
	Handle string `json:"handle"`
}

// NewIdentity is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewIdentity(handle string) (Identity, error) {
	handle = strings.TrimSpace(handle)
	if len(handle) == 0 {
		return Identity{}, ErrHandleEmpty
	}
	if len(handle) > MaxHandleLen {
		return Identity{}, ErrHandleTooLong
	}
	return Identity{Handle: handle}, nil
}

func (i Identity) Authenticated() bool { return i.Handle != "" }

func (i Identity) String() string {
	if i.Handle == "" {
		return "anonymous"
	}
	return i.Handle
}
