package handler

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/octobees/leadscout/internal/entity"
)

func TestLeadsHandler_ListRuns(t *testing.T) {
	e := echo.New()
	leads := &stubLeads{runs: []entity.Run{{ID: uuid.New(), City: "Raleigh", Status: entity.RunCompleted}}}

	c, rec := jsonContext(e, http.MethodGet, "/api/runs?limit=5", "")
	if err := NewLeadsHandler(leads).ListRuns(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if leads.lastLimit != 5 {
		t.Fatalf("expected limit 5, got %d", leads.lastLimit)
	}
	var runs []entity.Run
	decodeData(t, rec, &runs)
	if len(runs) != 1 || runs[0].City != "Raleigh" {
		t.Fatalf("unexpected runs %+v", runs)
	}

	c, rec = jsonContext(e, http.MethodGet, "/api/runs?limit=abc", "")
	_ = NewLeadsHandler(leads).ListRuns(c)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLeadsHandler_RunLeads(t *testing.T) {
	e := echo.New()
	runID := uuid.New()
	leads := &stubLeads{leads: map[uuid.UUID][]entity.StoredLead{
		runID: {{ID: 1, RunID: runID, Name: "Acme Plumbing", Score: 80, Hotness: "hot"}},
	}}

	cases := []struct {
		name     string
		id       string
		wantCode int
	}{
		{name: "bad id", id: "not-a-uuid", wantCode: http.StatusBadRequest},
		{name: "unknown run", id: uuid.NewString(), wantCode: http.StatusNotFound},
		{name: "found", id: runID.String(), wantCode: http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := jsonContext(e, http.MethodGet, "/", "")
			c.SetPath("/api/runs/:id/leads")
			c.SetParamNames("id")
			c.SetParamValues(tc.id)
			_ = NewLeadsHandler(leads).RunLeads(c)
			if rec.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, rec.Code)
			}
		})
	}
}

func TestLeadsHandler_RecentAndClear(t *testing.T) {
	e := echo.New()

	c, rec := jsonContext(e, http.MethodGet, "/api/leads/recent", "")
	_ = NewLeadsHandler(&stubLeads{err: errBoom}).RecentLeads(c)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	c, rec = jsonContext(e, http.MethodPost, "/api/clear", "")
	_ = NewLeadsHandler(&stubLeads{cleared: 4}).Clear(c)
	var body struct {
		Deleted int64 `json:"runs_deleted"`
	}
	decodeData(t, rec, &body)
	if body.Deleted != 4 {
		t.Fatalf("expected 4 runs deleted, got %d", body.Deleted)
	}
}
