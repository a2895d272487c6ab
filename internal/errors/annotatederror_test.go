package errors_test

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/myrjola/gymcrm/internal/errors"
	"github.com/myrjola/gymcrm/internal/testhelpers"
)

var errUserMissing = errors.NewSentinel("user missing")

func TestAnnotatedError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "sentinel",
			err:  errUserMissing,
			want: "user missing",
		},
		{
			name: "annotated error",
			err:  errors.Wrap(errUserMissing, "get user", slog.String("user_id", "abc")),
			want: "get user: user missing",
		},
		{
			name: "nested annotated error",
			err: errors.Wrap(
				errors.Wrap(errUserMissing, "fetch user"),
				"generate recommendations",
			),
			want: "generate recommendations: fetch user: user missing",
		},
		{
			name: "wrap nil",
			err:  errors.Wrap(nil, "nothing to wrap"),
			want: "nothing to wrap",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsAndAs(t *testing.T) {
	wrapped := errors.Wrap(fmt.Errorf("list logs: %w", errUserMissing), "recommendations")
	if !errors.Is(wrapped, errUserMissing) {
		t.Error("Is() = false, want true for wrapped sentinel")
	}
	if errors.Is(wrapped, errors.NewSentinel("user missing")) {
		t.Error("Is() = true, want false for a different sentinel with the same message")
	}

	root := &customError{msg: "store down"}
	var target *customError
	if !errors.As(errors.Wrap(root, "fetch"), &target) {
		t.Fatal("As() = false, want true")
	}
	if target != root {
		t.Errorf("As() target = %v, want %v", target, root)
	}
	if unwrapped := errors.Unwrap(errors.Wrap(root, "fetch")); unwrapped != root {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, root)
	}
}

func TestSlogError(t *testing.T) {
	err := errors.Wrap(errUserMissing, "context",
		slog.String("key", "value"), slog.Duration("duration", time.Second))
	var buf bytes.Buffer
	l := testhelpers.NewLogger(&buf)
	l.Info("test", errors.SlogError(err))
	logLine := buf.String()
	for _, content := range []string{
		"error.message=\"context: user missing\"",
		"error.annotations.key=value",
		"error.annotations.duration=1s",
		"annotatederror_test.go:",
	} {
		if !strings.Contains(logLine, content) {
			t.Errorf("expected log line %s to contain %s", logLine, content)
		}
	}
	if strings.Contains(logLine, "annotatederror.go") {
		t.Fatal("expected annotatederror.go NOT to be in log line")
	}

	// None of these may panic.
	errors.SlogError(errors.Join(nil, nil, errUserMissing, errors.New("test")))
	errors.SlogError(nil)
	errors.SlogError(fmt.Errorf("test: %w", errUserMissing))
	errors.SlogError(errors.Wrap(errors.Join(nil, nil), "wrap error"))
}

func TestDecoratePanic(t *testing.T) {
	defer func() {
		err := errors.DecoratePanic(recover())
		if err == nil {
			t.Fatal("expected error")
		}
		if got, want := err.Error(), "panic: boom"; got != want {
			t.Errorf("err.Error(): got %q, want %q", got, want)
		}
		if got := errors.SlogError(err).String(); !strings.Contains(got, "annotatederror_test.go:") {
			t.Errorf("expected %q to point to the test file", got)
		}
	}()
	panic("boom")
}

type customError struct {
	msg string
}

func (e *customError) Error() string {
	return e.msg
}
