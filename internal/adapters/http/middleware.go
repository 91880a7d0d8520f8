package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dkeye/Coedit/internal/core"
	"github.com/dkeye/Coedit/internal/domain"
)

const identityCtxKey = "identity"

// IdentityMiddleware resolves the caller's identity once per request.
func IdentityMiddleware(idp core.IdentityProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		if idp != nil {
			if id, err := idp.Identify(c.Request); err == nil {
				c.Set(identityCtxKey, id)
			}
		}
		c.Next()
	}
}

func CurrentIdentity(c *gin.Context) domain.Identity {
	if v, ok := c.Get(identityCtxKey); ok {
		if id, ok := v.(domain.Identity); ok {
			return id
		}
	}
	return domain.Identity{}
}

func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentIdentity(c).Authenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
