package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/idtoken"

	"github.com/octobees/leadscout/internal/entity"
)

// ErrWorkerNotConfigured is returned when no scraper worker URL is set.
var ErrWorkerNotConfigured = errors.New("scraper worker url is not configured")

// WorkerSource asks a remote scraper worker for fragments. The worker is expected to
// answer POST /scrape with {"data": {"fragments": [...]}} or {"error": "..."}.
type WorkerSource struct {
	client  *http.Client
	baseURL string
}

// NewWorkerSource builds a worker source. When client is nil an ID-token client is
// created for the worker audience, falling back to a plain client outside Google Cloud.
func NewWorkerSource(ctx context.Context, client *http.Client, workerBaseURL string) (*WorkerSource, error) {
	workerBaseURL = strings.TrimRight(strings.TrimSpace(workerBaseURL), "/")
	if workerBaseURL == "" {
		return nil, ErrWorkerNotConfigured
	}
	if client == nil {
		idc, err := idtoken.NewClient(ctx, workerBaseURL)
		if err != nil {
			client = &http.Client{Timeout: 5 * time.Minute}
		} else {
			client = idc
		}
	}
	return &WorkerSource{client: client, baseURL: workerBaseURL}, nil
}

type scrapeRequest struct {
	Source entity.Source `json:"source"`
	Query
}

// Fetch implements FragmentSource.
func (w *WorkerSource) Fetch(ctx context.Context, src entity.Source, q Query) ([]entity.Fragment, error) {
	body, err := json.Marshal(scrapeRequest{Source: src, Query: q})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL+"/scrape", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create worker request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("worker request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("worker error (%d): %s", resp.StatusCode, workerError(resp.Body))
	}

	var workerResp struct {
		Data struct {
			Fragments []entity.Fragment `json:"fragments"`
		} `json:"data"`
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&workerResp); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("could not decode worker response: %w", err)
	}
	if workerResp.Error != "" {
		return nil, fmt.Errorf("worker error: %s", workerResp.Error)
	}
	return workerResp.Data.Fragments, nil
}

func workerError(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 64<<10))
	if err != nil || len(data) == 0 {
		return "worker returned an error"
	}
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(data))
}
