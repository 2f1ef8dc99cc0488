package handler

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"

	"github.com/octobees/leadscout/internal/export"
)

// ResultsHandler serves the snapshot files written after each run.
type ResultsHandler struct {
	outputDir string
}

// NewResultsHandler serves files from outputDir.
func NewResultsHandler(outputDir string) *ResultsHandler {
	return &ResultsHandler{outputDir: outputDir}
}

// LatestJSON handles GET /api/results/latest.
func (h *ResultsHandler) LatestJSON(c echo.Context) error {
	return h.serve(c, export.JSONFile, echo.MIMEApplicationJSONCharsetUTF8)
}

// LatestCSV handles GET /api/results/latest.csv.
func (h *ResultsHandler) LatestCSV(c echo.Context) error {
	return h.serve(c, export.CSVFile, "text/csv; charset=utf-8")
}

// LatestXLSX handles GET /api/results/latest.xlsx.
func (h *ResultsHandler) LatestXLSX(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+export.XLSXFile+`"`)
	return h.serve(c, export.XLSXFile, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
}

func (h *ResultsHandler) serve(c echo.Context, name, contentType string) error {
	data, err := os.ReadFile(filepath.Join(h.outputDir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Error(c, http.StatusNotFound, "no results yet")
		}
		return Error(c, http.StatusInternalServerError, "failed to read results")
	}
	return c.Blob(http.StatusOK, contentType, data)
}
