package service

import (
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestLogBufferEvictsOldest(t *testing.T) {
	buf := NewLogBuffer(3)
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for _, msg := range []string{"one", "two", "three", "four"} {
		buf.Add(at, msg)
	}

	lines := buf.Tail(0)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "[2026-01-02T03:04:05Z] two" {
		t.Fatalf("unexpected first line: %q", lines[0])
	}
	if tail := buf.Tail(1); len(tail) != 1 || !strings.HasSuffix(tail[0], "four") {
		t.Fatalf("unexpected tail: %v", tail)
	}

	buf.Reset()
	if len(buf.Tail(0)) != 0 || buf.String() != "" {
		t.Fatalf("expected empty buffer after reset")
	}
}

func TestLogBufferTee(t *testing.T) {
	buf := NewLogBuffer(10)
	logger := buf.Tee(zap.NewNop()).With(zap.String("run", "r1"))

	logger.Debug("hidden")
	logger.Info("source fetched", zap.Int("fragments", 4), zap.String("source", "yelp"))
	logger.Warn("source failed")

	lines := buf.Tail(0)
	if len(lines) != 2 {
		t.Fatalf("expected debug entry to be skipped, got %v", lines)
	}
	if !strings.HasSuffix(lines[0], "source fetched fragments=4 run=r1 source=yelp") {
		t.Fatalf("unexpected info line: %q", lines[0])
	}
	if !strings.Contains(lines[1], "WARN source failed") {
		t.Fatalf("unexpected warn line: %q", lines[1])
	}
}
