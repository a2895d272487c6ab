// Package flightrecorder keeps a rolling runtime trace in memory and writes it to disk when a request times out.
package flightrecorder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/trace"
	"sync"
	"time"
)

const (
	minAge   = time.Minute
	maxBytes = 16 << 20
	// DefaultCooldown is the minimum time between two captures.
	DefaultCooldown = 10 * time.Minute
)

// Recorder captures runtime traces of timed out requests.
type Recorder struct {
	logger   *slog.Logger
	recorder *trace.FlightRecorder
	dir      string
	cooldown time.Duration
	now      func() time.Time

	mu          sync.Mutex
	lastCapture time.Time
}

// New creates a Recorder writing traces to dir. The directory is created if missing.
func New(logger *slog.Logger, dir string) (*Recorder, error) {
	if dir == "" {
		return nil, errors.New("traces directory is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil { //nolint:mnd // rwxr-x---
		return nil, fmt.Errorf("create traces directory: %w", err)
	}
	return &Recorder{
		logger: logger,
		recorder: trace.NewFlightRecorder(trace.FlightRecorderConfig{
			MinAge:   minAge,
			MaxBytes: maxBytes,
		}),
		dir:         dir,
		cooldown:    DefaultCooldown,
		now:         time.Now,
		mu:          sync.Mutex{},
		lastCapture: time.Time{},
	}, nil
}

// Start begins recording.
func (r *Recorder) Start(ctx context.Context) error {
	if err := r.recorder.Start(); err != nil {
		return fmt.Errorf("start flight recorder: %w", err)
	}
	r.logger.LogAttrs(ctx, slog.LevelInfo, "flight recorder started",
		slog.String("dir", r.dir), slog.Duration("cooldown", r.cooldown))
	return nil
}

// Stop ends recording.
func (r *Recorder) Stop(ctx context.Context) {
	r.recorder.Stop()
	r.logger.LogAttrs(ctx, slog.LevelInfo, "flight recorder stopped")
}

// reserve reports whether a capture may happen now and records it.
func (r *Recorder) reserve() (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	if !r.lastCapture.IsZero() && now.Sub(r.lastCapture) < r.cooldown {
		return now, false
	}
	r.lastCapture = now
	return now, true
}

// CaptureTimeoutTrace writes the recorded trace to a timestamped file. Captures within the cooldown are skipped.
func (r *Recorder) CaptureTimeoutTrace(ctx context.Context) {
	now, ok := r.reserve()
	if !ok {
		r.logger.LogAttrs(ctx, slog.LevelDebug, "skipping trace capture due to cooldown")
		return
	}

	path := filepath.Join(r.dir, "timeout-"+now.UTC().Format("20060102-150405.000")+".trace")
	file, err := os.Create(path)
	if err != nil {
		r.logger.LogAttrs(ctx, slog.LevelError, "failed to create trace file",
			slog.String("file", path), slog.Any("error", err))
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			r.logger.LogAttrs(ctx, slog.LevelError, "failed to close trace file",
				slog.String("file", path), slog.Any("error", closeErr))
		}
	}()

	written, err := r.recorder.WriteTo(file)
	if err != nil {
		r.logger.LogAttrs(ctx, slog.LevelError, "failed to write trace",
			slog.String("file", path), slog.Any("error", err))
		return
	}
	r.logger.LogAttrs(ctx, slog.LevelWarn, "captured timeout trace",
		slog.String("file", path), slog.Int64("bytes", written))
}
