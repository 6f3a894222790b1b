package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/muthii-lawrence/nyumba-hub.backend/internal/identity"
	"github.com/muthii-lawrence/nyumba-hub.backend/internal/models"
)

// ContextKeyIdentity holds the key for the resolved identity in Gin context.
const ContextKeyIdentity = "identity"

// IdentityMiddleware resolves the optional bearer credential on every
// request. A missing, malformed or unverifiable credential leaves the
// request anonymous; it never aborts here. Handlers that require
// authentication enforce it via RequireIdentity or IdentityFrom.
func IdentityMiddleware(resolver identity.IResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		var bearer string
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
				bearer = parts[1]
			}
		}

		ident, _ := resolver.Resolve(c.Request.Context(), bearer)
		if ident != nil {
			c.Set(ContextKeyIdentity, ident)
		}

		c.Next()
	}
}

// RequireIdentity aborts with 401 when the request resolved to anonymous.
// Assumes IdentityMiddleware runs first.
func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IdentityFrom(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
				"code":  "unauthenticated",
			})
			return
		}
		c.Next()
	}
}

// IdentityFrom returns the resolved identity for the request, or nil for an
// anonymous caller.
func IdentityFrom(c *gin.Context) *models.Identity {
	value, exists := c.Get(ContextKeyIdentity)
	if !exists {
		return nil
	}
	ident, ok := value.(*models.Identity)
	if !ok {
		return nil
	}
	return ident
}
