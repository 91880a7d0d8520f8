// Package auth adapts external identity sources to core.IdentityProvider.
package auth

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/sessions"

	"github.com/dkeye/Coedit/internal/core"
	"github.com/dkeye/Coedit/internal/domain"
)

const (
	SessionName = "CoeditSessions"
	// IdentityKey is the session value holding the identity handle.
	IdentityKey = "identity"
)

// SessionProvider reads the identity stored in the signed session cookie by
// the login flow.
type SessionProvider struct {
	store sessions.Store
	name  string
}

func NewSessionProvider(store sessions.Store) *SessionProvider {
	return &SessionProvider{store: store, name: SessionName}
}

func (p *SessionProvider) Identify(r *http.Request) (domain.Identity, error) {
	s, err := p.store.Get(r, p.name)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", core.ErrUnauthenticated, err)
	}
	handle, _ := s.Values[IdentityKey].(string)
	if handle == "" {
		return domain.Identity{}, core.ErrUnauthenticated
	}
	return identify(handle)
}
