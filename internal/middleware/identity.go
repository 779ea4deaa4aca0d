package middleware

// identity.go defines helper functions shared across this package's
// middleware files for pulling the authenticated user_id out of the Echo
// context.

import (
	"github.com/labstack/echo/v4"
)

// userID extracts the user identifier stored by JWTAuth. It returns
// "guest" when no user is authenticated.
func userID(c echo.Context) string {
	v := c.Get("user_id")
	if v == nil {
		return "guest"
	}
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return "guest"
}
