package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/octobees/leadscout/internal/handler"
)

// Logging writes one structured line per HTTP request and stores a logger tagged
// with the request id for handlers.
func Logging(logger *zap.Logger) echo.MiddlewareFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			reqLogger := logger.With(zap.String("request_id", RequestIDFromContext(c)))
			handler.SetRequestLogger(c, reqLogger)

			err := next(c)
			latency := time.Since(start)

			if err != nil {
				c.Error(err)
			}

			fields := []zap.Field{
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Int("status", c.Response().Status),
				zap.Duration("latency", latency),
			}
			if role := RoleFromContext(c); role != "" {
				fields = append(fields, zap.String("role", role))
			}
			switch status := c.Response().Status; {
			case status >= 500:
				reqLogger.Error("request", append(fields, zap.Error(err))...)
			case status >= 400:
				reqLogger.Warn("request", fields...)
			default:
				reqLogger.Info("request", fields...)
			}

			return err
		}
	}
}
