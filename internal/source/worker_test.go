package source

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/octobees/leadscout/internal/entity"
)

func TestWorkerSource_Fetch(t *testing.T) {
	var got scrapeRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/scrape" || r.Method != http.MethodPost {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{
			"fragments": []map[string]any{
				{"name": "Joe's Diner", "phone": "919-555-0100", "rating": 4.5, "reviewCount": 12},
			},
		}})
	}))
	defer server.Close()

	ws, err := NewWorkerSource(context.Background(), server.Client(), server.URL+"/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fragments, err := ws.Fetch(context.Background(), entity.SourceYelp, Query{City: "Raleigh", State: "NC", Niche: "diners", MaxLeads: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Source != entity.SourceYelp || got.City != "Raleigh" || got.Niche != "diners" || got.MaxLeads != 5 {
		t.Fatalf("unexpected request payload: %+v", got)
	}
	if len(fragments) != 1 || fragments[0].Name != "Joe's Diner" {
		t.Fatalf("unexpected fragments: %+v", fragments)
	}
	if fragments[0].ReviewCount == nil || *fragments[0].ReviewCount != 12 {
		t.Fatalf("expected review count 12, got %v", fragments[0].ReviewCount)
	}
}

func TestWorkerSource_FetchErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{name: "http error with json body", status: http.StatusBadGateway, body: `{"error":"blocked by captcha"}`, wantMsg: "blocked by captcha"},
		{name: "http error with text body", status: http.StatusInternalServerError, body: "boom", wantMsg: "boom"},
		{name: "error field on success", status: http.StatusOK, body: `{"error":"quota exceeded"}`, wantMsg: "quota exceeded"},
		{name: "malformed body", status: http.StatusOK, body: `{"data":`, wantMsg: "could not decode"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer server.Close()

			ws, err := NewWorkerSource(context.Background(), server.Client(), server.URL)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			_, err = ws.Fetch(context.Background(), entity.SourceGoogleMaps, Query{})
			if err == nil || !strings.Contains(err.Error(), tc.wantMsg) {
				t.Fatalf("expected error containing %q, got %v", tc.wantMsg, err)
			}
		})
	}
}

func TestNewWorkerSource_RequiresURL(t *testing.T) {
	if _, err := NewWorkerSource(context.Background(), http.DefaultClient, "  "); !errors.Is(err, ErrWorkerNotConfigured) {
		t.Fatalf("expected ErrWorkerNotConfigured, got %v", err)
	}
}
