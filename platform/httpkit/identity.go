// Package httpkit provides HTTP utilities including identity abstraction.
package httpkit

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextIdentityKey is the gin context key for the authenticated identity.
const ContextIdentityKey = "identity"

// Identity is the decoded bearer-token identity attached to a request.
// It lives for the duration of one request and is never persisted here.
type Identity struct {
	ID    uuid.UUID
	Email string
	Role  string
}

// HasRole checks whether the identity carries one of the given roles.
func (i Identity) HasRole(roles ...string) bool {
	for _, role := range roles {
		if i.Role == role {
			return true
		}
	}
	return false
}

// GetIdentity extracts the Identity from a gin context.
func GetIdentity(c *gin.Context) (Identity, bool) {
	value, ok := c.Get(ContextIdentityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := value.(Identity)
	return id, ok
}

// MustGetIdentity extracts the Identity from a gin context.
// If no identity is attached it aborts with 401 Unauthenticated and
// returns false.
func MustGetIdentity(c *gin.Context) (Identity, bool) {
	id, ok := GetIdentity(c)
	if !ok {
		Fail(c, http.StatusUnauthorized, msgUnauthenticated)
		return Identity{}, false
	}
	return id, true
}
