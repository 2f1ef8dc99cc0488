package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/octobees/leadscout/internal/entity"
	"github.com/octobees/leadscout/internal/service"
	"github.com/octobees/leadscout/internal/source"
)

// MaxUploadBytes bounds uploaded CSV files.
const MaxUploadBytes = 10 << 20

// SourceRunner runs the pipeline over a given fragment source, refusing while a
// background scan is active.
type SourceRunner interface {
	RunSource(ctx context.Context, src source.FragmentSource, cfg entity.RunConfig) (service.RunReport, error)
}

// AdminUploadHandler runs the pipeline over fragments uploaded as CSV.
type AdminUploadHandler struct {
	runner   SourceRunner
	settings SettingsStore
}

// NewAdminUploadHandler wires the handler.
func NewAdminUploadHandler(runner SourceRunner, settings SettingsStore) *AdminUploadHandler {
	return &AdminUploadHandler{runner: runner, settings: settings}
}

// UploadCSV handles POST /admin/upload-csv requests. Saved settings supply the city,
// niche, filters and lead cap; the sources are whichever appear in the file.
func (h *AdminUploadHandler) UploadCSV(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return Error(c, http.StatusBadRequest, "missing csv file")
	}
	if fileHeader.Size > MaxUploadBytes {
		return Error(c, http.StatusRequestEntityTooLarge, "csv file too large")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return Error(c, http.StatusBadRequest, "unable to open file")
	}
	defer file.Close()

	fragments, err := source.ReadCSV(file)
	if err != nil {
		var validationErr source.CSVValidationError
		if errors.As(err, &validationErr) {
			return Error(c, http.StatusBadRequest, validationErr.Error())
		}
		return Error(c, http.StatusBadRequest, "failed to read csv")
	}
	static := source.NewStatic(fragments)
	if static.Len() == 0 {
		return Error(c, http.StatusBadRequest, "csv contains no businesses")
	}

	cfg, err := h.settings.Load()
	if err != nil {
		cfg = entity.DefaultRunConfig()
	}
	cfg.Sources = static.Sources()

	report, err := h.runner.RunSource(c.Request().Context(), static, cfg)
	switch {
	case errors.Is(err, service.ErrAlreadyRunning):
		return Error(c, http.StatusConflict, "a scan is already running")
	case errors.Is(err, entity.ErrInvalidRunConfig):
		return Error(c, http.StatusBadRequest, err.Error())
	case err != nil:
		RequestLogger(c).Error("csv run failed", zap.Error(err))
		return Error(c, http.StatusInternalServerError, "failed to process csv")
	}

	return Success(c, http.StatusOK, "csv processed", map[string]any{
		"report": report,
		"leads":  report.Leads,
	})
}
