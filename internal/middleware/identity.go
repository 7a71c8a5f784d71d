package middleware

// identity.go defines the authenticated caller attached to the Echo context
// by JWTAuth and read by RequireRole, Audited and the rate limiter.

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/inventory-api/internal/model"
)

const identityKey = "identity"

// Identity is the caller as described by a verified access token. It is
// not reloaded from the store, so a role change only shows after the next
// refresh.
type Identity struct {
	ID    string
	Email string
	Role  model.Role
}

// SetIdentity attaches id to the request context.
func SetIdentity(c echo.Context, id Identity) { c.Set(identityKey, id) }

// IdentityFrom returns the identity attached by JWTAuth, if any.
func IdentityFrom(c echo.Context) (Identity, bool) {
	id, ok := c.Get(identityKey).(Identity)
	if !ok || id.ID == "" {
		return Identity{}, false
	}
	return id, true
}

// userID returns the caller's id or "anon" when the request is
// unauthenticated.
func userID(c echo.Context) string {
	if id, ok := IdentityFrom(c); ok {
		return id.ID
	}
	return "anon"
}
