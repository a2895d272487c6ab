package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/myrjola/gymcrm/internal/logging"
)

func TestWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger(&buf, slog.LevelDebug, nil)

	ctx := logging.WithAttrs(context.Background(), slog.String("trace_id", "t-1"))
	ctx = logging.WithAttrs(ctx, slog.String("user_id", "u-1"))
	logger.LogAttrs(ctx, slog.LevelInfo, "hello", slog.Int("n", 1))

	got := buf.String()
	for _, want := range []string{"msg=hello", "n=1", "trace_id=t-1", "user_id=u-1"} {
		if !strings.Contains(got, want) {
			t.Errorf("log line %q does not contain %q", got, want)
		}
	}
}

func TestNewLogger_level(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger(&buf, slog.LevelWarn, nil)
	logger.LogAttrs(t.Context(), slog.LevelInfo, "suppressed")
	if buf.Len() != 0 {
		t.Errorf("expected info record to be dropped, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want slog.Level
	}{
		{name: "debug", want: slog.LevelDebug},
		{name: "WARN", want: slog.LevelWarn},
		{name: " error ", want: slog.LevelError},
		{name: "bogus", want: slog.LevelInfo},
		{name: "", want: slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := logging.ParseLevel(tt.name); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}
