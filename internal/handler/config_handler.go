package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/octobees/leadscout/internal/entity"
)

// SettingsStore reads and writes the saved run settings.
type SettingsStore interface {
	Load() (entity.RunConfig, error)
	Save(cfg entity.RunConfig) error
}

// ConfigHandler serves the run settings edited from the control panel.
type ConfigHandler struct {
	settings SettingsStore
	logger   *zap.Logger
}

// NewConfigHandler constructs a ConfigHandler.
func NewConfigHandler(settings SettingsStore, logger *zap.Logger) *ConfigHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConfigHandler{settings: settings, logger: logger}
}

// Get handles GET /api/config.
func (h *ConfigHandler) Get(c echo.Context) error {
	cfg, err := h.settings.Load()
	if err != nil {
		h.logger.Warn("settings unreadable, serving defaults", zap.Error(err))
		cfg = entity.DefaultRunConfig()
	}
	return Success(c, http.StatusOK, "", cfg)
}

// Update handles POST /api/config. Fields missing from the body keep their saved value.
func (h *ConfigHandler) Update(c echo.Context) error {
	cfg, err := h.settings.Load()
	if err != nil {
		cfg = entity.DefaultRunConfig()
	}
	if err := c.Bind(&cfg); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	if err := h.settings.Save(cfg); err != nil {
		if errors.Is(err, entity.ErrInvalidRunConfig) {
			return Error(c, http.StatusBadRequest, err.Error())
		}
		h.logger.Error("save settings failed", zap.Error(err))
		return Error(c, http.StatusInternalServerError, "failed to save config")
	}

	h.logger.Info("config updated",
		zap.String("city", cfg.City),
		zap.String("niche", cfg.Niche),
		zap.Int("max_leads", cfg.MaxLeads),
	)
	return Success(c, http.StatusOK, "config saved", cfg)
}
