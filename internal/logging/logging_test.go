package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLevelFromString(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" INFO ":  slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelWarn,
		"loud":    slog.LevelWarn,
	}
	for in, want := range cases {
		if got := levelFromString(in); got != want {
			t.Fatalf("levelFromString(%q)=%v，期望 %v", in, got, want)
		}
	}
}

func TestNew_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn")
	log.Debug("hidden")
	log.Warn("shown", "url", "http://example.test/")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug 日志不应输出：%q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "url=http://example.test/") {
		t.Fatalf("warn 日志缺失：%q", out)
	}
}
