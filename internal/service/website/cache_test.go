package website

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"

	"github.com/octobees/leadscout/internal/entity"
)

func TestRedisCacheMiss(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectGet(verdictKey("https://joes.test")).RedisNil()

	_, ok, err := NewRedisCache(client, time.Hour).Get(context.Background(), "https://joes.test")
	if err != nil || ok {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRedisCacheRoundTrip(t *testing.T) {
	client, mock := redismock.NewClientMock()
	verdict := entity.WebsiteVerdict{Status: entity.WebsiteBroken, HTTPStatus: 404, Reason: "HTTP 404", URL: "https://joes.test"}
	data, _ := json.Marshal(verdict)

	mock.ExpectSet(verdictKey("https://joes.test"), string(data), time.Hour).SetVal("OK")
	mock.ExpectGet(verdictKey("https://joes.test")).SetVal(string(data))

	cache := NewRedisCache(client, time.Hour)
	if err := cache.Set(context.Background(), "https://joes.test", verdict); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := cache.Get(context.Background(), "https://joes.test")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if got != verdict {
		t.Fatalf("expected %#v, got %#v", verdict, got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRedisCacheReadError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectGet(verdictKey("https://joes.test")).SetErr(errors.New("connection reset"))

	_, ok, err := NewRedisCache(client, 0).Get(context.Background(), "https://joes.test")
	if err == nil || ok {
		t.Fatalf("expected error, got ok=%v err=%v", ok, err)
	}
}
