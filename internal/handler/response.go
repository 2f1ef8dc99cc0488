package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const requestLoggerKey = "request_logger"

// SetRequestLogger stores the logger scoped to the current request.
func SetRequestLogger(c echo.Context, logger *zap.Logger) {
	c.Set(requestLoggerKey, logger)
}

// RequestLogger returns the request-scoped logger, or the global zap logger when
// none was stored.
func RequestLogger(c echo.Context) *zap.Logger {
	if logger, ok := c.Get(requestLoggerKey).(*zap.Logger); ok && logger != nil {
		return logger
	}
	return zap.L()
}

// APIResponse describes the standard envelope returned by the API.
type APIResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Success sends a successful response using the shared envelope format.
func Success(c echo.Context, status int, message string, data any) error {
	if status == 0 {
		status = http.StatusOK
	}
	payload := APIResponse{
		Status:  "success",
		Message: message,
		Data:    data,
	}
	return c.JSON(status, payload)
}

// Error sends an error response using the shared envelope format.
func Error(c echo.Context, status int, message string) error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	payload := APIResponse{
		Status:  "error",
		Message: message,
	}
	return c.JSON(status, payload)
}

// requestError is an error that maps onto a specific HTTP status.
type requestError struct {
	status  int
	message string
}

func (e *requestError) Error() string {
	return e.message
}

func badRequest(message string) error {
	return &requestError{status: http.StatusBadRequest, message: message}
}

// respondError writes err using its status when it is a requestError, 500 otherwise.
func respondError(c echo.Context, err error) error {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		return Error(c, reqErr.status, reqErr.message)
	}
	RequestLogger(c).Error("request failed", zap.Error(err))
	return Error(c, http.StatusInternalServerError, "internal error")
}
