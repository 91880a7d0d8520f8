package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dkeye/Coedit/internal/core"
	"github.com/dkeye/Coedit/internal/domain"
)

// JWTProvider verifies HS256 tokens issued by the external auth service.
// The token is read from the Authorization header, or from the token query
// parameter for WebSocket upgrades where browsers cannot set headers.
type JWTProvider struct {
	secret []byte
	claim  string
}

func NewJWTProvider(secret, claim string) *JWTProvider {
	if claim == "" {
		claim = "email"
	}
	return &JWTProvider{secret: []byte(secret), claim: claim}
}

func (p *JWTProvider) Identify(r *http.Request) (domain.Identity, error) {
	raw := TokenFromRequest(r)
	if raw == "" {
		return domain.Identity{}, core.ErrUnauthenticated
	}
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return p.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", core.ErrUnauthenticated, err)
	}

	handle, _ := claims[p.claim].(string)
	if handle == "" {
		if sub, err := claims.GetSubject(); err == nil {
			handle = sub
		}
	}
	if handle == "" {
		return domain.Identity{}, fmt.Errorf("%w: token has no %s claim", core.ErrUnauthenticated, p.claim)
	}
	return identify(handle)
}

func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

// identify validates a handle taken from a credential. Every failure is
// reported as core.ErrUnauthenticated.
func identify(handle string) (domain.Identity, error) {
	id, err := domain.NewIdentity(handle)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %w", core.ErrUnauthenticated, err)
	}
	return id, nil
}
