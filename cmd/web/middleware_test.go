package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/synctest"
	"time"

	"github.com/myrjola/gymcrm/internal/errors"
	"github.com/myrjola/gymcrm/internal/gym"
	"github.com/myrjola/gymcrm/internal/logging"
	"github.com/myrjola/gymcrm/internal/recommendation"
	"github.com/myrjola/gymcrm/internal/testhelpers"
)

func newTestApplication() *application {
	return &application{ //nolint:exhaustruct // this is a test
		logger: testhelpers.NewLogger(io.Discard),
	}
}

func Test_application_timeout(t *testing.T) {
	tests := []struct {
		name     string
		sleep    time.Duration
		timesOut bool
	}{
		{name: "completes within timeout", sleep: 500 * time.Millisecond, timesOut: false},
		{name: "times out", sleep: 3 * time.Second, timesOut: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			synctest.Test(t, func(t *testing.T) {
				app := newTestApplication()
				handler := app.timeout(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					select {
					case <-time.After(tt.sleep):
					case <-r.Context().Done():
						return
					}
					app.writeJSON(w, r, http.StatusOK, map[string]string{"status": "completed"})
				}))

				w := httptest.NewRecorder()
				handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

				if tt.timesOut {
					if w.Code != http.StatusServiceUnavailable {
						t.Errorf("Expected status 503 on timeout, got %d", w.Code)
					}
					if got := w.Header().Get("Content-Type"); got != "application/json" {
						t.Errorf("Content-Type = %q, want application/json", got)
					}
				} else if w.Code != http.StatusOK {
					t.Errorf("Expected status 200, got %d", w.Code)
				}
			})
		})
	}
}

func Test_application_recoverPanic(t *testing.T) {
	app := newTestApplication()
	handler := app.recoverPanic(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("secret internals")
	}))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status code = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	var body errorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error != http.StatusText(http.StatusInternalServerError) {
		t.Errorf("error = %q, want the generic status text", body.Error)
	}
}

func Test_application_handleError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "not found", err: fmt.Errorf("get user: %w", gym.ErrNotFound), want: http.StatusNotFound},
		{
			name: "recommendation user not found",
			err:  fmt.Errorf("%w: %w", recommendation.ErrNotFound, gym.ErrNotFound),
			want: http.StatusNotFound,
		},
		{name: "invalid", err: errors.Wrap(gym.ErrInvalid, "rating out of range"), want: http.StatusBadRequest},
		{name: "malformed body", err: errors.Wrap(errMalformedBody, "unexpected EOF"), want: http.StatusBadRequest},
		{name: "conflict", err: errors.Wrap(gym.ErrConflict, "email taken"), want: http.StatusConflict},
		{
			name: "recommendation failure",
			err:  &recommendation.Error{Op: "generate workout recommendations", Err: errors.New("disk on fire")},
			want: http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApplication()
			w := httptest.NewRecorder()
			app.handleError(w, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)
			if w.Code != tt.want {
				t.Errorf("status code = %d, want %d", w.Code, tt.want)
			}
			if got := w.Header().Get("Content-Type"); got != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", got)
			}
		})
	}
}

func Test_userContext(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger(&buf, slog.LevelDebug, nil)
	mux := http.NewServeMux()
	mux.Handle("GET /users/{userID}", userContext(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		logger.LogAttrs(r.Context(), slog.LevelInfo, "handled")
	})))
	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/users/u-1", nil))
	if !strings.Contains(buf.String(), "user_id=u-1") {
		t.Errorf("log output %q does not contain the user id", buf.String())
	}
}
