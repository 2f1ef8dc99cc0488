package service

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultLogLines is how many lines a LogBuffer keeps.
const DefaultLogLines = 500

// LogBuffer keeps the most recent run log lines for the control panel.
type LogBuffer struct {
	mu    sync.Mutex
	lines []string
	max   int
}

// NewLogBuffer creates a buffer holding at most max lines.
func NewLogBuffer(max int) *LogBuffer {
	if max <= 0 {
		max = DefaultLogLines
	}
	return &LogBuffer{max: max}
}

// Add appends a timestamped line, evicting the oldest when full.
func (b *LogBuffer) Add(at time.Time, msg string) {
	line := fmt.Sprintf("[%s] %s", at.UTC().Format(time.RFC3339), msg)
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.lines) >= b.max {
		b.lines = slices.Delete(b.lines, 0, len(b.lines)-b.max+1)
	}
	b.lines = append(b.lines, line)
}

// Reset drops every line.
func (b *LogBuffer) Reset() {
	b.mu.Lock()
	b.lines = nil
	b.mu.Unlock()
}

// Tail returns up to n of the newest lines, oldest first. n <= 0 returns all.
func (b *LogBuffer) Tail(n int) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	start := 0
	if n > 0 && len(b.lines) > n {
		start = len(b.lines) - n
	}
	return slices.Clone(b.lines[start:])
}

// String joins every line with newlines.
func (b *LogBuffer) String() string {
	return strings.Join(b.Tail(0), "\n")
}

// Tee returns a logger writing to both logger and the buffer. Only entries at
// info level and above reach the buffer.
func (b *LogBuffer) Tee(logger *zap.Logger) *zap.Logger {
	core := &bufferCore{LevelEnabler: zapcore.InfoLevel, buf: b}
	return logger.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, core)
	}))
}

type bufferCore struct {
	zapcore.LevelEnabler
	buf    *LogBuffer
	fields []zapcore.Field
}

func (c *bufferCore) With(fields []zapcore.Field) zapcore.Core {
	return &bufferCore{
		LevelEnabler: c.LevelEnabler,
		buf:          c.buf,
		fields:       append(slices.Clone(c.fields), fields...),
	}
}

func (c *bufferCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *bufferCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range c.fields {
		f.AddTo(enc)
	}
	for _, f := range fields {
		f.AddTo(enc)
	}

	var line strings.Builder
	if ent.Level >= zapcore.WarnLevel {
		line.WriteString(strings.ToUpper(ent.Level.String()))
		line.WriteString(" ")
	}
	line.WriteString(ent.Message)

	keys := make([]string, 0, len(enc.Fields))
	for k := range enc.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&line, " %s=%v", k, enc.Fields[k])
	}

	c.buf.Add(ent.Time, line.String())
	return nil
}

func (c *bufferCore) Sync() error { return nil }
