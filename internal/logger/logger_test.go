package logger

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: slog.LevelInfo, Format: "json", Writer: &buf})

	log.Info("fast started", "goal_hours", 16)

	assert.Contains(t, buf.String(), `"msg":"fast started"`)
	assert.Contains(t, buf.String(), `"level":"INFO"`)
	assert.Contains(t, buf.String(), `"goal_hours":16`)
}

func TestNew_FormatFromEnvironment(t *testing.T) {
	tests := []struct {
		environment string
		wantJSON    bool
	}{
		{"production", true},
		{"development", false},
		{"staging", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.environment, func(t *testing.T) {
			var buf bytes.Buffer
			New(Config{Environment: tt.environment, Writer: &buf}).Info("hello")

			isJSON := bytes.HasPrefix(buf.Bytes(), []byte("{"))
			assert.Equal(t, tt.wantJSON, isJSON, buf.String())
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestPrettyHandler_Line(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	log.Debug("tick", "elapsed", 90*time.Second, "note", "two words")

	out := buf.String()
	assert.Contains(t, out, "DBG")
	assert.Contains(t, out, "tick")
	assert.Contains(t, out, "elapsed=1m30s")
	assert.Contains(t, out, `note="two words"`)
	assert.True(t, bytes.HasSuffix(buf.Bytes(), []byte("\n")))
}

func TestPrettyHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	log.Info("hidden")
	log.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "WRN")
}

func TestPrettyHandler_NilOptionsDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, nil))

	log.Debug("hidden")
	log.Info("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestPrettyHandler_AttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	base := NewPrettyHandler(&buf, nil)

	assert.Same(t, base, base.WithGroup(""))

	h := base.WithAttrs([]slog.Attr{slog.String("component", "timer")}).WithGroup("fast")
	slog.New(h).Info("goal reached", "id", "fst-1")

	out := buf.String()
	assert.Contains(t, out, "component=timer")
	assert.Contains(t, out, "fast.id=fst-1")

	// The parent handler is unchanged.
	buf.Reset()
	slog.New(base).Info("plain", "id", "x")
	assert.Contains(t, buf.String(), "id=x")
	assert.NotContains(t, buf.String(), "fast.id")
	assert.NotContains(t, buf.String(), "component")
}

func TestPrettyHandler_PlainLine(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, nil))

	log.Warn("broker down", "attempt", 3, "reason", "")

	line := buf.String()
	assert.NotContains(t, line, "\033[", "no terminal escapes")
	assert.Regexp(t, `^\d{2}:\d{2}:\d{2} WRN broker down attempt=3 reason=""\n$`, line)
}

func TestLevelTag(t *testing.T) {
	assert.Equal(t, "ERR", levelTag(slog.LevelError))
	assert.Equal(t, "WARN+2", levelTag(slog.LevelWarn+2))
}
