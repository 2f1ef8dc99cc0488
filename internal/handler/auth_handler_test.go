package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/octobees/leadscout/internal/auth"
	"github.com/octobees/leadscout/internal/service"
)

func newAuthHandler(t *testing.T, accounts ...service.Account) *AuthHandler {
	t.Helper()
	jwtManager := auth.NewJWTManager("test-secret", 0)
	return NewAuthHandler(service.NewAuthService(jwtManager, accounts...))
}

func operatorAccount(t *testing.T, password string) service.Account {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	return service.Account{Email: "ops@example.com", PasswordHash: string(hash), Role: auth.RoleAdmin}
}

func loginContext(e *echo.Echo, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_Login(t *testing.T) {
	e := echo.New()

	t.Run("invalid payload", func(t *testing.T) {
		c, rec := loginContext(e, "{")
		handler := newAuthHandler(t)
		if err := handler.Login(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		c, rec := loginContext(e, `{"email":"  "}`)
		handler := newAuthHandler(t, operatorAccount(t, "secret"))
		_ = handler.Login(c)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("no accounts configured", func(t *testing.T) {
		c, rec := loginContext(e, `{"email":"ops@example.com","password":"secret"}`)
		handler := newAuthHandler(t)
		_ = handler.Login(c)
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		c, rec := loginContext(e, `{"email":"ops@example.com","password":"nope"}`)
		handler := newAuthHandler(t, operatorAccount(t, "secret"))
		_ = handler.Login(c)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		c, rec := loginContext(e, `{"email":"OPS@example.com","password":"secret"}`)
		handler := newAuthHandler(t, operatorAccount(t, "secret"))
		if err := handler.Login(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		var resp struct {
			Status string `json:"status"`
			Data   struct {
				AccessToken string `json:"access_token"`
				Role        string `json:"role"`
			} `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Data.AccessToken == "" {
			t.Fatalf("expected access token in response")
		}
		if resp.Data.Role != auth.RoleAdmin {
			t.Fatalf("expected admin role, got %s", resp.Data.Role)
		}
	})
}
