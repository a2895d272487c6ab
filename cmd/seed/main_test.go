package main

import (
	"io"
	"os"
	"strings"
	"testing"

	"github.com/myrjola/gymcrm/internal/gym"
	"github.com/myrjola/gymcrm/internal/sqlite"
	"github.com/myrjola/gymcrm/internal/testhelpers"
)

func newTestService(t *testing.T) *gym.Service {
	t.Helper()
	// The database optimizer may log after the test has finished.
	logger := testhelpers.NewLogger(io.Discard)
	db, err := sqlite.NewDatabase(t.Context(), ":memory:", logger)
	if err != nil {
		t.Fatalf("NewDatabase() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return gym.NewService(gym.NewSQLiteRepositories(db, logger), logger)
}

func Test_load(t *testing.T) {
	ctx := t.Context()
	svc := newTestService(t)
	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))

	f, err := os.Open("testdata/seed.json")
	if err != nil {
		t.Fatalf("open seed file: %v", err)
	}
	defer f.Close()

	sum, err := load(ctx, svc, f, logger)
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}
	if sum != (summary{exercises: 1, users: 2, logs: 2}) {
		t.Errorf("load() summary = %+v", sum)
	}

	members, err := svc.ListUsersByBusiness(ctx, "gym-1")
	if err != nil {
		t.Fatalf("ListUsersByBusiness() error = %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("len(members) = %d, want 2", len(members))
	}
	var anna gym.User
	for _, m := range members {
		if m.Email == "anna@example.com" {
			anna = m
		}
	}
	if anna.FitnessLevel != gym.FitnessLevelIntermediate || anna.DateOfBirth == nil {
		t.Errorf("profile not applied: %+v", anna)
	}

	logs, err := svc.ListRecentWorkoutLogs(ctx, anna.ID, 0)
	if err != nil {
		t.Fatalf("ListRecentWorkoutLogs() error = %v", err)
	}
	if len(logs) != 2 || logs[0].WorkoutID != "cardio" {
		t.Fatalf("unexpected logs %+v", logs)
	}
	if logs[1].TotalDurationMinutes != 50 {
		t.Errorf("duration derived from end time = %v, want 50", logs[1].TotalDurationMinutes)
	}
	if logs[1].Exercises[1].Exercise == nil || logs[1].Exercises[1].Exercise.Name != "Kettlebell Swing" {
		t.Errorf("custom exercise not resolved: %+v", logs[1].Exercises[1])
	}
}

func Test_load_errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "malformed json", data: `{"users": [`},
		{name: "invalid registration", data: `{"users": [{"registration": {"google_id": "x"}}]}`},
		{
			name: "unknown exercise",
			data: `{"users": [{"registration": {"google_id": "x", "email": "x@example.com"},
				"workout_logs": [{"start_time": "2025-06-02T07:30:00Z", "exercises": [{"exercise_id": "nope"}]}]}]}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t)
			if _, err := load(t.Context(), svc, strings.NewReader(tt.data), testhelpers.NewLogger(io.Discard)); err == nil {
				t.Error("load() expected error")
			}
		})
	}
}

func Test_run_usage(t *testing.T) {
	err := run(t.Context(), testhelpers.NewLogger(io.Discard), []string{"seed"}, func(string) (string, bool) {
		return "", false
	})
	if err == nil {
		t.Error("run() without a file expected usage error")
	}
}
