package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	authpkg "github.com/octobees/leadscout/internal/auth"
	"github.com/octobees/leadscout/internal/handler"
)

// JWT requires a valid bearer token and stores its subject, email and role on the context.
func JWT(manager *authpkg.JWTManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, msg := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if msg != "" {
				return handler.Error(c, http.StatusUnauthorized, msg)
			}

			claims, err := manager.ParseToken(token)
			if err != nil {
				return handler.Error(c, http.StatusUnauthorized, "invalid or expired token")
			}

			setClaims(c, claims)
			return next(c)
		}
	}
}

// bearerToken extracts the token from an Authorization header. msg describes why
// the header was rejected.
func bearerToken(header string) (token, msg string) {
	if header == "" {
		return "", "missing authorization header"
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", "invalid authorization header"
	}
	return token, ""
}
