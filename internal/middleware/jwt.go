package middleware // middleware provides shared request processing for handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/inventory-api/internal/model"
	"github.com/iliyamo/inventory-api/internal/utils"
)

var (
	ErrMissingToken    = errors.New("missing authorization header")
	ErrMalformedHeader = errors.New("authorization header must be: Bearer <token>")
	ErrInvalidToken    = errors.New("invalid or expired token")
)

// AccessVerifier checks an access token and returns its claims.
type AccessVerifier interface {
	VerifyAccessToken(raw string) (*utils.AccessClaims, error)
}

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and attaches the resulting Identity to the context. The session store is
// never consulted; an access token stays valid until it expires.
func JWTAuth(v AccessVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				return unauthorized(c, err)
			}
			claims, err := v.VerifyAccessToken(raw)
			if err != nil {
				return unauthorized(c, ErrInvalidToken)
			}
			SetIdentity(c, Identity{
				ID:    claims.Subject,
				Email: claims.Email,
				Role:  model.Role(claims.Role),
			})
			return next(c)
		}
	}
}

// bearerToken extracts the token from an Authorization header value. The
// scheme must be exactly "Bearer".
func bearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || scheme != "Bearer" {
		return "", ErrMalformedHeader
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMalformedHeader
	}
	return token, nil
}

func unauthorized(c echo.Context, err error) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"message": err.Error()})
}
