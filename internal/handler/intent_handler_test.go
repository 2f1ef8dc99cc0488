package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/octobees/leadscout/internal/entity"
	"github.com/octobees/leadscout/internal/service/intent"
)

type stubParser struct {
	err  error
	text string
}

func (s *stubParser) Parse(_ context.Context, text string, base entity.RunConfig) (entity.RunConfig, error) {
	s.text = text
	if s.err != nil {
		return entity.RunConfig{}, s.err
	}
	base.Niche = "roofers"
	return base, nil
}

func TestIntentHandler_Parse(t *testing.T) {
	e := echo.New()

	cases := []struct {
		name      string
		body      string
		parserErr error
		wantCode  int
		wantSaved int
	}{
		{name: "empty text", body: `{"text":"   "}`, wantCode: http.StatusBadRequest},
		{name: "malformed", body: `{"text":`, wantCode: http.StatusBadRequest},
		{name: "unparseable", body: `{"text":"hello"}`, parserErr: intent.ErrUnparseable, wantCode: http.StatusUnprocessableEntity},
		{name: "invalid config", body: `{"text":"find 9999 roofers"}`, parserErr: entity.ErrInvalidRunConfig, wantCode: http.StatusUnprocessableEntity},
		{name: "parser failure", body: `{"text":"find roofers"}`, parserErr: errBoom, wantCode: http.StatusBadGateway},
		{name: "preview", body: `{"text":"find roofers"}`, wantCode: http.StatusOK},
		{name: "apply", body: `{"text":"find roofers","apply":true}`, wantCode: http.StatusOK, wantSaved: 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			settings := newStubSettings()
			parser := &stubParser{err: tc.parserErr}
			c, rec := jsonContext(e, http.MethodPost, "/api/intent", tc.body)
			if err := NewIntentHandler(parser, settings).Parse(c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, rec.Code)
			}
			if len(settings.saved) != tc.wantSaved {
				t.Fatalf("expected %d saves, got %d", tc.wantSaved, len(settings.saved))
			}
			if tc.wantSaved > 0 && settings.saved[0].Niche != "roofers" {
				t.Fatalf("expected parsed niche saved, got %s", settings.saved[0].Niche)
			}
		})
	}
}
