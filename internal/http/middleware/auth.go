package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/domain"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/identity"
)

const userKey = "user"

// AuthRequired rejects the request unless its Authorization header resolves
// to an active account.
func AuthRequired(r *identity.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := r.Require(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}

// AuthOptional attaches the account when the header resolves and otherwise
// continues anonymously.
func AuthOptional(r *identity.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user := r.Optional(c.Request.Context(), c.GetHeader("Authorization")); user != nil {
			c.Set(userKey, user)
		}
		c.Next()
	}
}

// CurrentUser returns the account attached by the auth middleware, or nil.
func CurrentUser(c *gin.Context) *domain.User {
	if v, ok := c.Get(userKey); ok {
		if u, ok := v.(*domain.User); ok {
			return u
		}
	}
	return nil
}
