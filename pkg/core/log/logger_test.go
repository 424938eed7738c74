package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	propserr "github.com/winterSteve25/props/pkg/core/error"
)

func newBuffered(level Level, format Format) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewWithConfig(Config{Level: level, Format: format, Output: &buf, Name: "test"}), &buf
}

func TestLogger_LevelFiltering(t *testing.T) {
	logger, buf := newBuffered(LevelWarn, FormatText)

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Expected debug/info to be filtered, got %q", out)
	}
	if !strings.Contains(out, "WRN [test] shown") {
		t.Errorf("Expected warning line, got %q", out)
	}
}

func TestLogger_JSON(t *testing.T) {
	logger, buf := newBuffered(LevelDebug, FormatJSON)
	logger.WithField("component", "parser").Debug("parsed", Fields{"statements": 3})

	var data map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("Expected valid JSON, got %q: %v", buf.String(), err)
	}
	if data["component"] != "parser" || data["statements"] != float64(3) {
		t.Errorf("Expected fields to be present, got %v", data)
	}
	if data["level"] != "debug" || data["logger"] != "test" {
		t.Errorf("Unexpected standard fields: %v", data)
	}
}

func TestLogger_WithFieldDoesNotMutate(t *testing.T) {
	logger, buf := newBuffered(LevelInfo, FormatLogfmt)
	_ = logger.WithField("a", 1)
	logger.Info("plain")

	if strings.Contains(buf.String(), "a=1") {
		t.Errorf("Expected parent logger to be unchanged, got %q", buf.String())
	}
}

func TestLogger_LogError(t *testing.T) {
	logger, buf := newBuffered(LevelInfo, FormatLogfmt)

	logger.LogError(propserr.New("bad input").WithCode(propserr.CodeInvalidInput).WithDetail("field", "source"))
	out := buf.String()
	if !strings.Contains(out, "level=info") {
		t.Errorf("Expected low severity to log at info, got %q", out)
	}
	if !strings.Contains(out, `error_field="source"`) {
		t.Errorf("Expected details as fields, got %q", out)
	}

	buf.Reset()
	logger.LogError(errors.New("plain"))
	if !strings.Contains(buf.String(), "level=error") {
		t.Errorf("Expected plain errors at error level, got %q", buf.String())
	}
}

func TestTimer(t *testing.T) {
	logger, buf := newBuffered(LevelDebug, FormatLogfmt)
	logger.StartTimer("lex").WithField("tokens", 4).Stop()

	out := buf.String()
	if !strings.Contains(out, `message="lex completed"`) || !strings.Contains(out, "duration_ms=") {
		t.Errorf("Expected timer entry, got %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in     string
		want   Level
		wantOK bool
	}{
		{"debug", LevelDebug, true},
		{"WARNING", LevelWarn, true},
		{"", LevelInfo, true},
		{"loud", LevelInfo, false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestDiscard(t *testing.T) {
	if Discard().IsLevelEnabled(LevelFatal) {
		t.Error("Discard logger should not enable any level")
	}
}
