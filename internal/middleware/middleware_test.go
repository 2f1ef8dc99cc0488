package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/octobees/leadscout/internal/auth"
	"github.com/octobees/leadscout/internal/config"
	handlerpkg "github.com/octobees/leadscout/internal/handler"
)

func TestLoggingMiddleware(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(ContextKeyRequestID, "rid-123")

	err := Logging(logger)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	entries := logs.FilterField(zap.String("request_id", "rid-123")).All()
	if len(entries) != 1 {
		t.Fatalf("expected one log entry with request id, got %d", len(entries))
	}
	if entries[0].Level != zap.InfoLevel {
		t.Fatalf("expected info level, got %s", entries[0].Level)
	}

	// errors are rendered by echo, logged, and propagated
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.Set(ContextKeyRequestID, "rid-456")
	expected := errors.New("boom")
	err = Logging(logger)(func(c echo.Context) error {
		return expected
	})(c)
	entries = logs.FilterField(zap.String("request_id", "rid-456")).All()
	if len(entries) != 1 || entries[0].Level != zap.ErrorLevel {
		t.Fatalf("expected one error entry for failed request, got %v", entries)
	}
	if !errors.Is(err, expected) {
		t.Fatalf("expected error to bubble up")
	}
}

func TestRateLimiter(t *testing.T) {
	cfg := config.RateLimitConfig{Requests: 1, Interval: time.Minute}
	mw := RateLimiter(cfg)

	e := echo.New()
	nextCalls := 0
	next := func(c echo.Context) error {
		nextCalls++
		return c.NoContent(http.StatusOK)
	}

	do := func(mw echo.MiddlewareFunc, path string) int {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		rec := httptest.NewRecorder()
		_ = mw(next)(e.NewContext(req, rec))
		return rec.Code
	}

	if code := do(mw, "/api/scan/single"); code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", code)
	}
	// The bucket is shared across every wrapped route.
	req := httptest.NewRequest(http.MethodPost, "/api/scan/auto", nil)
	rec := httptest.NewRecorder()
	_ = mw(next)(e.NewContext(req, rec))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request rejected, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Fatalf("expected Retry-After 60, got %q", rec.Header().Get("Retry-After"))
	}
	assertErrorEnvelope(t, rec, "scan rate limit exceeded")

	if code := do(RateLimiter(config.RateLimitConfig{}), "/api/scan/single"); code != http.StatusOK {
		t.Fatalf("expected passthrough when limiter disabled, got %d", code)
	}
	if nextCalls != 2 {
		t.Fatalf("expected next handler invoked twice, got %d", nextCalls)
	}
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	mw := RequireRole(auth.RoleAdmin, auth.RoleViewer)

	t.Run("missing role", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		_ = mw(func(c echo.Context) error { return nil })(c)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("incorrect role", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set(ContextKeyUserRole, "guest")

		_ = mw(func(c echo.Context) error { return nil })(c)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
		assertErrorEnvelope(t, rec, "insufficient permissions")
	})

	t.Run("success", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set(ContextKeyUserRole, auth.RoleViewer)

		called := false
		if err := mw(func(c echo.Context) error {
			called = true
			return c.NoContent(http.StatusOK)
		})(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !called {
			t.Fatalf("expected handler to run")
		}
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	e := echo.New()
	handler := RequestID()

	t.Run("reuse incoming header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "incoming")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		if err := handler(func(c echo.Context) error {
			if RequestIDFromContext(c) != "incoming" {
				t.Fatalf("expected request id to be stored")
			}
			return c.NoContent(http.StatusOK)
		})(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if rec.Header().Get("X-Request-ID") != "incoming" {
			t.Fatalf("expected response header to propagate request id")
		}
	})

	t.Run("replace malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "bad id\twith spaces")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		_ = handler(func(c echo.Context) error { return c.NoContent(http.StatusOK) })(c)
		rid := rec.Header().Get("X-Request-ID")
		if rid == "" || rid == "bad id\twith spaces" {
			t.Fatalf("expected generated request id, got %q", rid)
		}
	})

	t.Run("generate when missing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		if err := handler(func(c echo.Context) error {
			rid := RequestIDFromContext(c)
			if rid == "" {
				t.Fatalf("expected generated request id")
			}
			return c.NoContent(http.StatusOK)
		})(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if rec.Header().Get("X-Request-ID") == "" {
			t.Fatalf("expected response header set")
		}
	})
}

func TestLoggingStoresRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.Set(ContextKeyRequestID, "rid-789")

	_ = Logging(zap.New(core))(func(c echo.Context) error {
		handlerpkg.RequestLogger(c).Info("inside handler")
		return c.NoContent(http.StatusOK)
	})(c)

	entries := logs.FilterMessage("inside handler").FilterField(zap.String("request_id", "rid-789")).All()
	if len(entries) != 1 {
		t.Fatalf("expected handler log tagged with request id, got %d entries", len(entries))
	}
}

func assertErrorEnvelope(t *testing.T, rec *httptest.ResponseRecorder, message string) {
	t.Helper()
	var payload handlerpkg.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.Status != "error" || payload.Message != message {
		t.Fatalf("expected error envelope with %q, got %+v", message, payload)
	}
}
