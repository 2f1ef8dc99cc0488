package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/octobees/leadscout/internal/dto"
	"github.com/octobees/leadscout/internal/entity"
	"github.com/octobees/leadscout/internal/service/intent"
)

// IntentHandler turns free-form requests into run settings.
type IntentHandler struct {
	parser   intent.Parser
	settings SettingsStore
}

// NewIntentHandler wires the handler.
func NewIntentHandler(parser intent.Parser, settings SettingsStore) *IntentHandler {
	return &IntentHandler{parser: parser, settings: settings}
}

// Parse handles POST /api/intent. With "apply" set the result is saved as the
// current settings.
func (h *IntentHandler) Parse(c echo.Context) error {
	var req dto.IntentRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		return Error(c, http.StatusBadRequest, "text is required")
	}

	base, err := h.settings.Load()
	if err != nil {
		base = entity.DefaultRunConfig()
	}

	cfg, err := h.parser.Parse(c.Request().Context(), req.Text, base)
	if err != nil {
		switch {
		case errors.Is(err, intent.ErrUnparseable):
			return Error(c, http.StatusUnprocessableEntity, "input not relevant to lead search")
		case errors.Is(err, entity.ErrInvalidRunConfig):
			return Error(c, http.StatusUnprocessableEntity, err.Error())
		default:
			return Error(c, http.StatusBadGateway, "unable to parse request")
		}
	}

	if req.Apply {
		if err := h.settings.Save(cfg); err != nil {
			return Error(c, http.StatusInternalServerError, "failed to save config")
		}
	}

	return Success(c, http.StatusOK, "request parsed", map[string]any{
		"config":  cfg,
		"applied": req.Apply,
	})
}
