package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/myrjola/gymcrm/internal/e2etest"
	"github.com/myrjola/gymcrm/internal/errors"
	"github.com/myrjola/gymcrm/internal/gym"
	"github.com/myrjola/gymcrm/internal/logging"
	"github.com/myrjola/gymcrm/internal/ptr"
	"github.com/myrjola/gymcrm/internal/recommendation"
	"golang.org/x/sync/errgroup"
)

const (
	defaultNumUsers         = 10
	maxConcurrentSetups     = 10
	maxConcurrentOperations = 20
	setupTimeout            = 2 * time.Minute
	scenarioTimeout         = 30 * time.Second
	workoutHistoryWeeks     = 26
	workoutsPerWeek         = 3
	successRateThreshold    = 95.0
)

//nolint:gochecknoglobals // rotation of exercises in generated workouts.
var rotation = [][]string{
	{"weighted-squat", "bench-press", "rowing"},
	{"deadlift", "push-up", "plank"},
	{"walking", "hip-mobility-flow", "single-leg-stand"},
}

// generatedLog builds the n-th workout of a user's history. Hours and ratings vary so that the optimal time
// prediction has something to rank.
func generatedLog(n int, start time.Time) gym.WorkoutLog {
	exercises := make([]gym.PerformedExercise, 0, len(rotation[0]))
	for _, id := range rotation[n%len(rotation)] {
		exercises = append(exercises, gym.PerformedExercise{
			ExerciseID: id,
			Exercise:   nil,
			Sets: []gym.PerformedSet{
				{Reps: ptr.Ref(8 + n%5), WeightKg: nil, DurationSeconds: nil, DistanceMeters: nil, Completed: true},
			},
			Completed: n%7 != 0,
		})
	}
	return gym.WorkoutLog{
		ID:                   "",
		UserID:               "",
		WorkoutID:            "stress-" + strconv.Itoa(n%len(rotation)),
		BusinessID:           "",
		StartTime:            start,
		EndTime:              nil,
		Exercises:            exercises,
		TotalDurationMinutes: float64(30 + n%4*10),
		CaloriesBurned:       0,
		Rating:               ptr.Ref(1 + n%5),
		Notes:                "",
		Status:               gym.LogStatusCompleted,
		CreatedAt:            time.Time{},
	}
}

// setupUser registers a member and records half a year of workout history.
func setupUser(ctx context.Context, client *e2etest.Client, index int, runID string) (string, error) {
	var user gym.User
	reg := gym.Registration{
		GoogleID:   fmt.Sprintf("stress-%s-%d", runID, index),
		Email:      fmt.Sprintf("stress-%s-%d@example.com", runID, index),
		Name:       fmt.Sprintf("Stress %d", index),
		PhotoURL:   "",
		Role:       gym.RoleMember,
		BusinessID: "stress-" + runID,
	}
	if err := client.PostJSON(ctx, "/api/users/register", reg, http.StatusCreated, &user); err != nil {
		return "", fmt.Errorf("register user %d: %w", index, err)
	}

	first := time.Now().UTC().AddDate(0, 0, -workoutHistoryWeeks*7)
	for n := range workoutHistoryWeeks * workoutsPerWeek {
		start := first.AddDate(0, 0, n*7/workoutsPerWeek).Add(time.Duration(6+n%12) * time.Hour)
		if err := client.PostJSON(ctx, "/api/users/"+user.ID+"/workout-logs", generatedLog(n, start),
			http.StatusCreated, nil); err != nil {
			return "", fmt.Errorf("record workout %d of user %d: %w", n, index, err)
		}
	}
	return user.ID, nil
}

func setupUsers(ctx context.Context, client *e2etest.Client, numUsers int, logger *slog.Logger) ([]string, error) {
	runID := strconv.FormatInt(time.Now().UnixNano(), 36)
	userIDs := make([]string, numUsers)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentSetups)
	for i := range numUsers {
		g.Go(func() error {
			userCtx, cancel := context.WithTimeout(ctx, setupTimeout)
			defer cancel()
			id, err := setupUser(userCtx, client, i, runID)
			if err != nil {
				return err
			}
			userIDs[i] = id
			logger.LogAttrs(userCtx, slog.LevelDebug, "user ready", slog.String("user_id", id))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("setup users: %w", err)
	}
	return userIDs, nil
}

// scenario reads the reports of a member the way a dashboard does after a workout.
func scenario(ctx context.Context, client *e2etest.Client, userID string) error {
	var logs []gym.WorkoutLog
	if err := client.GetJSON(ctx, "/api/users/"+userID+"/workout-logs?limit=10", &logs); err != nil {
		return err
	}
	var bundle recommendation.Bundle
	if err := client.GetJSON(ctx, "/api/users/"+userID+"/recommendations", &bundle); err != nil {
		return err
	}
	var report recommendation.TimePerformanceReport
	if err := client.GetJSON(ctx, "/api/users/"+userID+"/optimal-workout-times", &report); err != nil {
		return err
	}
	if len(report.OptimalWorkoutHours) == 0 {
		return errors.New("expected optimal workout hours for a user with history")
	}
	return nil
}

func runLoadTest(ctx context.Context, client *e2etest.Client, userIDs []string, logger *slog.Logger) error {
	logger.LogAttrs(ctx, slog.LevelInfo, "Starting load test", slog.Int("num_users", len(userIDs)))

	var successCount, failureCount atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentOperations)
	for _, userID := range userIDs {
		g.Go(func() error {
			scenarioCtx, cancel := context.WithTimeout(ctx, scenarioTimeout)
			defer cancel()
			if err := scenario(scenarioCtx, client, userID); err != nil {
				failureCount.Add(1)
				logger.LogAttrs(scenarioCtx, slog.LevelWarn, "Scenario failed",
					slog.String("user_id", userID), errors.SlogError(err))
				return nil
			}
			successCount.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("load test failed: %w", err)
	}

	successRate := float64(successCount.Load()) / float64(len(userIDs)) * 100 //nolint:mnd // percent
	logger.LogAttrs(ctx, slog.LevelInfo, "Load test completed",
		slog.Int64("successful", successCount.Load()),
		slog.Int64("failed", failureCount.Load()),
		slog.Float64("success_rate", successRate))
	if successRate < successRateThreshold {
		return fmt.Errorf("load test failed: success rate %.1f%% below threshold", successRate)
	}
	return nil
}

func main() {
	logger := logging.NewLogger(os.Stdout, slog.LevelInfo, nil)
	ctx := context.Background()

	if len(os.Args) < 2 || len(os.Args) > 3 { //nolint:mnd // hostname and optional user count
		logger.LogAttrs(ctx, slog.LevelError, "usage: stresstest <hostname> [users]")
		os.Exit(1)
	}
	var (
		hostname = os.Args[1]
		numUsers = defaultNumUsers
		start    = time.Now()
		err      error
	)
	if len(os.Args) == 3 { //nolint:mnd // optional user count
		if numUsers, err = strconv.Atoi(os.Args[2]); err != nil || numUsers <= 0 {
			logger.LogAttrs(ctx, slog.LevelError, "users must be a positive integer")
			os.Exit(1)
		}
	}
	ctx = logging.WithAttrs(ctx, slog.String("hostname", hostname))

	url := "https://" + hostname
	if strings.Contains(hostname, "localhost") {
		url = "http://" + hostname
	}
	client := e2etest.NewClient(url)
	if err = client.WaitForReady(ctx, "/api/healthy"); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server not ready in time", errors.SlogError(err))
		os.Exit(1)
	}

	setupStart := time.Now()
	userIDs, err := setupUsers(ctx, client, numUsers, logger)
	if err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failed to setup users", errors.SlogError(err))
		os.Exit(1)
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "User setup completed",
		slog.Duration("setup_duration", time.Since(setupStart)),
		slog.Int("users", len(userIDs)),
		slog.Int("workouts_per_user", workoutHistoryWeeks*workoutsPerWeek))

	loadTestStart := time.Now()
	if err = runLoadTest(ctx, client, userIDs, logger); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "load test failed", errors.SlogError(err))
		os.Exit(1)
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "Load test completed successfully 🙌",
		slog.Duration("total_duration", time.Since(start)),
		slog.Duration("load_test_duration", time.Since(loadTestStart)))
}
