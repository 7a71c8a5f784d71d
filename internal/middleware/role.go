package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/inventory-api/internal/model"
)

var (
	ErrUnauthenticated = errors.New("user not authenticated")
	ErrRoleMissing     = errors.New("role not assigned")
	ErrForbidden       = errors.New("insufficient permissions")
)

// RequireRole returns a middleware that lets the request through only when
// the identity attached by JWTAuth holds one of roles. It must run after
// JWTAuth.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFrom(c)
			switch {
			case !ok:
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": ErrUnauthenticated.Error()})
			case id.Role == "":
				return c.JSON(http.StatusForbidden, echo.Map{"message": ErrRoleMissing.Error()})
			case !allowed[id.Role]:
				return c.JSON(http.StatusForbidden, echo.Map{"message": ErrForbidden.Error()})
			}
			return next(c)
		}
	}
}
