package server

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mrmateussiilva/api-sgp/internal/auth"
	apperrors "github.com/mrmateussiilva/api-sgp/internal/errors"
)

const identityKey = "identity"

// extractToken pulls the bearer token from the Authorization header or,
// for clients that cannot set headers, from the token query parameter.
func extractToken(c echo.Context) string {
	header := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.QueryParam("token")
}

// requireToken verifies the caller's bearer token and stores the resolved
// identity in the request context.
func (s *Server) requireToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		identity, err := s.verifier.Verify(extractToken(c))
		if err != nil {
			return apperrors.UnauthorizedError("invalid or missing token")
		}
		c.Set(identityKey, identity)
		c.Set("userID", identity.UserID)
		return next(c)
	}
}

// identity returns the verified caller stored by requireToken.
func identity(c echo.Context) (*auth.Identity, error) {
	id, ok := c.Get(identityKey).(*auth.Identity)
	if !ok {
		return nil, apperrors.InternalError("missing identity in request context", nil)
	}
	return id, nil
}
