package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/octobees/leadscout/internal/dto"
	"github.com/octobees/leadscout/internal/entity"
	"github.com/octobees/leadscout/internal/repository"
)

// LeadsQuerier reads stored runs and leads.
type LeadsQuerier interface {
	ListRuns(ctx context.Context, limit int) ([]entity.Run, error)
	LeadsForRun(ctx context.Context, id uuid.UUID) ([]entity.StoredLead, error)
	RecentLeads(ctx context.Context, limit int) ([]entity.StoredLead, error)
	ClearAll(ctx context.Context) (int64, error)
}

// LeadsHandler exposes stored runs and leads.
type LeadsHandler struct {
	service LeadsQuerier
}

// NewLeadsHandler constructs a LeadsHandler.
func NewLeadsHandler(service LeadsQuerier) *LeadsHandler {
	return &LeadsHandler{service: service}
}

// ListRuns handles GET /api/runs.
func (h *LeadsHandler) ListRuns(c echo.Context) error {
	var q dto.ListQuery
	if err := c.Bind(&q); err != nil {
		return Error(c, http.StatusBadRequest, "invalid query parameters")
	}

	runs, err := h.service.ListRuns(c.Request().Context(), q.Limit)
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to fetch runs")
	}
	return Success(c, http.StatusOK, "", runs)
}

// RunLeads handles GET /api/runs/:id/leads.
func (h *LeadsHandler) RunLeads(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid run id")
	}

	leads, err := h.service.LeadsForRun(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrRunNotFound) {
			return Error(c, http.StatusNotFound, "run not found")
		}
		return Error(c, http.StatusInternalServerError, "failed to fetch leads")
	}
	return Success(c, http.StatusOK, "", leads)
}

// RecentLeads handles GET /api/leads/recent.
func (h *LeadsHandler) RecentLeads(c echo.Context) error {
	var q dto.ListQuery
	if err := c.Bind(&q); err != nil {
		return Error(c, http.StatusBadRequest, "invalid query parameters")
	}

	leads, err := h.service.RecentLeads(c.Request().Context(), q.Limit)
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to fetch leads")
	}
	return Success(c, http.StatusOK, "", leads)
}

// Clear handles POST /api/clear.
func (h *LeadsHandler) Clear(c echo.Context) error {
	deleted, err := h.service.ClearAll(c.Request().Context())
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to clear database")
	}
	return Success(c, http.StatusOK, "database cleared", map[string]int64{"runs_deleted": deleted})
}
