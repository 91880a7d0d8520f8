package core

import (
	"errors"
	"net/http"

	"github.com/dkeye/Coedit/internal/domain"
)

var ErrUnauthenticated = errors.New("unauthenticated")

// IdentityProvider resolves the verified identity behind a request.
// It returns ErrUnauthenticated when the request carries no identity.
type IdentityProvider interface {
	Identify(r *http.Request) (domain.Identity, error)
}
