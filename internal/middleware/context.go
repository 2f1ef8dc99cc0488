package middleware

import (
	"github.com/labstack/echo/v4"

	authpkg "github.com/octobees/leadscout/internal/auth"
)

// Keys under which the middleware stores request metadata on the echo context.
const (
	ContextKeyUserID    = "user_id"
	ContextKeyUserEmail = "user_email"
	ContextKeyUserRole  = "user_role"
	ContextKeyRequestID = "request_id"
)

// HeaderRequestID carries the request id in both directions.
const HeaderRequestID = echo.HeaderXRequestID

func setClaims(c echo.Context, claims *authpkg.Claims) {
	c.Set(ContextKeyUserID, claims.Subject)
	c.Set(ContextKeyUserEmail, claims.Email)
	c.Set(ContextKeyUserRole, claims.Role)
}

// RoleFromContext returns the authenticated role, empty for anonymous requests.
func RoleFromContext(c echo.Context) string {
	role, _ := c.Get(ContextKeyUserRole).(string)
	return role
}
