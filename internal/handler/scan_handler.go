package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/leadscout/internal/dto"
	"github.com/octobees/leadscout/internal/entity"
	"github.com/octobees/leadscout/internal/service"
)

// LogsLimit is how many lines GET /api/logs returns.
const LogsLimit = 50

// ScanRunner starts, stops and reports background scans.
type ScanRunner interface {
	StartSingle(cfg entity.RunConfig) error
	StartAuto(cfg entity.RunConfig, cycles int) error
	Stop() bool
	Status() service.Status
	Logs(n int) []string
}

// ScanHandler controls the background scanner.
type ScanHandler struct {
	runner   ScanRunner
	settings SettingsStore
}

// NewScanHandler wires the handler.
func NewScanHandler(runner ScanRunner, settings SettingsStore) *ScanHandler {
	return &ScanHandler{runner: runner, settings: settings}
}

// Single handles POST /api/scan/single.
func (h *ScanHandler) Single(c echo.Context) error {
	cfg, _, err := h.prepare(c)
	if err != nil {
		return respondError(c, err)
	}
	return h.started(c, h.runner.StartSingle(cfg), "scan started")
}

// Auto handles POST /api/scan/auto.
func (h *ScanHandler) Auto(c echo.Context) error {
	cfg, req, err := h.prepare(c)
	if err != nil {
		return respondError(c, err)
	}
	cycles := req.Days
	if cycles <= 0 {
		cycles = service.DefaultAutoCycles
	}
	return h.started(c, h.runner.StartAuto(cfg, cycles), "auto mode started")
}

// Stop handles POST /api/scan/stop.
func (h *ScanHandler) Stop(c echo.Context) error {
	stopped := h.runner.Stop()
	return Success(c, http.StatusOK, "stop requested", map[string]bool{"stopped": stopped})
}

// Status handles GET /api/status.
func (h *ScanHandler) Status(c echo.Context) error {
	return Success(c, http.StatusOK, "", h.runner.Status())
}

// Logs handles GET /api/logs.
func (h *ScanHandler) Logs(c echo.Context) error {
	return Success(c, http.StatusOK, "", map[string][]string{"logs": h.runner.Logs(LogsLimit)})
}

// prepare loads saved settings and applies request overrides.
func (h *ScanHandler) prepare(c echo.Context) (entity.RunConfig, dto.ScanRequest, error) {
	var req dto.ScanRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return entity.RunConfig{}, req, badRequest("invalid payload")
		}
	}

	cfg, err := h.settings.Load()
	if err != nil {
		return entity.RunConfig{}, req, fmt.Errorf("load settings: %w", err)
	}
	if !req.HasOverrides() {
		return cfg, req, nil
	}

	if req.City != "" {
		cfg.City = req.City
	}
	if req.State != "" {
		cfg.State = req.State
	}
	if req.Niche != "" {
		cfg.Niche = req.Niche
	}
	if req.MaxLeads > 0 {
		cfg.MaxLeads = req.MaxLeads
	}
	if err := h.settings.Save(cfg); err != nil {
		if errors.Is(err, entity.ErrInvalidRunConfig) {
			return entity.RunConfig{}, req, badRequest(err.Error())
		}
		return entity.RunConfig{}, req, fmt.Errorf("save settings: %w", err)
	}
	return cfg, req, nil
}

func (h *ScanHandler) started(c echo.Context, err error, message string) error {
	switch {
	case err == nil:
		return Success(c, http.StatusAccepted, message, h.runner.Status())
	case errors.Is(err, service.ErrAlreadyRunning):
		return Error(c, http.StatusConflict, "already running")
	case errors.Is(err, entity.ErrInvalidRunConfig):
		return Error(c, http.StatusBadRequest, err.Error())
	default:
		return Error(c, http.StatusInternalServerError, "failed to start scan")
	}
}
