package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/octobees/leadscout/internal/entity"
	"github.com/octobees/leadscout/internal/service"
)

func multipartRequest(t *testing.T, field, filename, content string) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/admin/upload-csv", body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	return req, httptest.NewRecorder()
}

func TestAdminUploadHandler_UploadCSV(t *testing.T) {
	e := echo.New()

	t.Run("missing file", func(t *testing.T) {
		req, rec := multipartRequest(t, "other", "leads.csv", "name\nAcme\n")
		c := e.NewContext(req, rec)
		handler := NewAdminUploadHandler(&stubExecutor{}, newStubSettings())
		_ = handler.UploadCSV(c)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("validation error", func(t *testing.T) {
		req, rec := multipartRequest(t, "file", "leads.csv", "name,rating\nAcme,high\n")
		c := e.NewContext(req, rec)
		handler := NewAdminUploadHandler(&stubExecutor{}, newStubSettings())
		_ = handler.UploadCSV(c)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("no rows", func(t *testing.T) {
		req, rec := multipartRequest(t, "file", "leads.csv", "name,phone\n")
		c := e.NewContext(req, rec)
		handler := NewAdminUploadHandler(&stubExecutor{}, newStubSettings())
		_ = handler.UploadCSV(c)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("executor failure", func(t *testing.T) {
		req, rec := multipartRequest(t, "file", "leads.csv", "name\nAcme Plumbing\n")
		c := e.NewContext(req, rec)
		handler := NewAdminUploadHandler(&stubExecutor{err: errBoom}, newStubSettings())
		_ = handler.UploadCSV(c)
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
	})

	t.Run("scan already running", func(t *testing.T) {
		req, rec := multipartRequest(t, "file", "leads.csv", "name\nAcme Plumbing\n")
		c := e.NewContext(req, rec)
		handler := NewAdminUploadHandler(&stubExecutor{err: service.ErrAlreadyRunning}, newStubSettings())
		_ = handler.UploadCSV(c)
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		csv := "name,phone,source\nAcme Plumbing,919-555-0101,yelp\nBeta Bakery,,google_maps\n"
		req, rec := multipartRequest(t, "file", "leads.csv", csv)
		c := e.NewContext(req, rec)
		executor := &stubExecutor{}
		handler := NewAdminUploadHandler(executor, newStubSettings())
		if err := handler.UploadCSV(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if executor.fragments != 2 {
			t.Fatalf("expected 2 fragments passed to the pipeline, got %d", executor.fragments)
		}
		if len(executor.cfg.Sources) != 2 || executor.cfg.Sources[0] != entity.SourceGoogleMaps {
			t.Fatalf("expected sources from the file in priority order, got %v", executor.cfg.Sources)
		}
		if executor.cfg.City != entity.DefaultCity {
			t.Fatalf("expected saved city, got %s", executor.cfg.City)
		}

		var resp map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp["status"] != "success" {
			t.Fatalf("expected success status, got %v", resp["status"])
		}
	})
}
