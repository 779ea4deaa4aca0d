package middleware // middleware provides shared request processing for handlers

import (
	"net/http" // http package defines standard HTTP status codes

	"github.com/iliyamo/raft-seat-reservation/internal/repository"
	"github.com/labstack/echo/v4" // echo provides middleware chaining and context
)

// RequireAdmin rejects any request whose authenticated user_id is not the
// reserved administrator identity. It assumes JWTAuth has already stored
// "user_id" in context.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			v := c.Get("user_id")
			uid, ok := v.(string)
			if !ok || !repository.IsAdmin(uid) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "PERMISSION_DENIED"})
			}
			return next(c)
		}
	}
}
