package middleware

import (
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"

	"github.com/octobees/leadscout/internal/handler"
)

// RequireRole enforces that the authenticated request carries one of roles.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role := RoleFromContext(c)
			if role == "" {
				return handler.Error(c, http.StatusForbidden, "missing role")
			}
			if !slices.Contains(roles, role) {
				return handler.Error(c, http.StatusForbidden, "insufficient permissions")
			}
			return next(c)
		}
	}
}
