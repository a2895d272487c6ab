package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/myrjola/gymcrm/internal/e2etest"
	"github.com/myrjola/gymcrm/internal/errors"
	"github.com/myrjola/gymcrm/internal/gym"
	"github.com/myrjola/gymcrm/internal/logging"
)

// testCatalog checks that the exercise catalog is served.
func testCatalog(ctx context.Context, client *e2etest.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second) //nolint:mnd // 10 seconds
	defer cancel()

	var exercises []gym.Exercise
	if err := client.GetJSON(ctx, "/api/exercises", &exercises); err != nil {
		return fmt.Errorf("list exercises: %w", err)
	}
	if len(exercises) == 0 {
		return errors.New("exercise catalog is empty")
	}
	return nil
}

func main() {
	logger := logging.NewLogger(os.Stdout, slog.LevelDebug, nil)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only hostname to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <hostname>")
		os.Exit(1)
	}

	var (
		hostname = os.Args[1]
		start    = time.Now()
	)
	ctx = logging.WithAttrs(ctx, slog.String("hostname", hostname))
	url := "https://" + hostname
	if strings.Contains(hostname, "localhost") {
		url = "http://" + hostname
	}

	client := e2etest.NewClient(url)
	if err := client.WaitForReady(ctx, "/api/healthy"); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server not ready in time", errors.SlogError(err))
		os.Exit(1)
	}
	if err := testCatalog(ctx, client); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error testing exercise catalog", errors.SlogError(err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌", slog.Duration("duration", time.Since(start)))
}
