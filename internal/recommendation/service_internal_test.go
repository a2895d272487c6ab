package recommendation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/myrjola/gymcrm/internal/gym"
	"github.com/myrjola/gymcrm/internal/ptr"
	"github.com/myrjola/gymcrm/internal/testhelpers"
)

type fakeDirectory struct {
	users map[string]gym.User
	err   error
}

func (f *fakeDirectory) GetUser(_ context.Context, id string) (gym.User, error) {
	if f.err != nil {
		return gym.User{}, f.err
	}
	user, ok := f.users[id]
	if !ok {
		return gym.User{}, gym.ErrNotFound
	}
	return user, nil
}

type fakeLogStore struct {
	logs  []gym.WorkoutLog
	err   error
	block bool
	limit int
}

func (f *fakeLogStore) ListRecentWorkoutLogs(ctx context.Context, _ string, limit int) ([]gym.WorkoutLog, error) {
	f.limit = limit
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.logs[:min(limit, len(f.logs))], nil
}

func newTestService(t *testing.T, users *fakeDirectory, logs *fakeLogStore, cfg Config) *Service {
	t.Helper()
	svc := NewService(users, logs, testhelpers.NewLogger(testhelpers.NewWriter(t)), cfg)
	svc.now = func() time.Time { return evaluatedAt }
	return svc
}

var errStoreDown = errors.New("store down")

func member(level gym.FitnessLevel) gym.User {
	return gym.User{
		ID:           "member",
		GoogleID:     "g-member",
		Name:         "Member",
		Email:        "member@example.com",
		PhotoURL:     "",
		Role:         gym.RoleMember,
		BusinessID:   "gym-1",
		FitnessLevel: level,
		FitnessGoals: []string{"strength"},
		DateOfBirth:  nil,
		CreatedAt:    evaluatedAt.AddDate(-1, 0, 0),
	}
}

func TestService_GenerateWorkoutRecommendations(t *testing.T) {
	t.Parallel()

	squat := definition("Squat", "legs", "glutes")
	bench := definition("Bench Press", "chest", "arms")
	deadlift := definition("Deadlift", "back", "legs")

	recent := logAt(evaluatedAt.AddDate(0, 0, -1), performed(squat, true), performed(bench, true))
	recent.TotalDurationMinutes = 60
	recent.Rating = ptr.Ref(4)
	earlier := logAt(evaluatedAt.AddDate(0, 0, -3), performed(squat, true))
	earlier.TotalDurationMinutes = 45
	old := logAt(evaluatedAt.AddDate(0, 0, -10), performed(deadlift, false))

	users := &fakeDirectory{users: map[string]gym.User{"member": member(gym.FitnessLevelIntermediate)}, err: nil}
	logs := &fakeLogStore{logs: []gym.WorkoutLog{recent, earlier, old}, err: nil, block: false, limit: 0}
	svc := newTestService(t, users, logs, Config{Location: nil, FetchTimeout: time.Second})

	got, err := svc.GenerateWorkoutRecommendations(t.Context(), "member")
	if err != nil {
		t.Fatalf("GenerateWorkoutRecommendations() error = %v", err)
	}
	if logs.limit != RecommendationLogLimit {
		t.Errorf("requested %d logs, want %d", logs.limit, RecommendationLogLimit)
	}

	want := Bundle{
		WorkoutFrequency: FrequencyAssessment{
			CurrentFrequency: 2,
			OptimalRange:     "3-5 times per week",
			Recommendation:   "Great workout frequency! You're maintaining a good balance.",
		},
		MuscleGroupBalance: BalanceAssessment{
			MuscleGroupDistribution: map[string]int{"legs": 3, "glutes": 2, "chest": 1, "arms": 1, "back": 1},
			// mean 1.6, variance 0.64
			BalanceScore: 92,
			Recommendations: []string{
				"You might be overworking legs. Consider balancing with other muscle groups.",
			},
		},
		PersonalizedWorkout: WorkoutTemplate{
			DurationMinutes: 45,
			Exercises:       []string{"weighted squats", "bench press", "deadlifts", "rowing"},
			WeeklyFrequency: 4,
		},
		RestDayRecommendation: RestDayRecommendation{
			RecommendedRestDays: 1,
			// (1.2 + 0.45 + 0) / 3 = 0.55
			Reason: "Based on your workout intensity (1), you should take 1 rest day(s) between intense sessions.",
		},
		InjuryPreventionTips: []string{},
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("GenerateWorkoutRecommendations() mismatch (-want +got):\n%s", diff)
	}
}

func TestService_GenerateWorkoutRecommendations_errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		users     *fakeDirectory
		logs      *fakeLogStore
		timeout   time.Duration
		notFound  bool
		wantCause error
	}{
		{
			name:     "unknown user",
			users:    &fakeDirectory{users: map[string]gym.User{}, err: nil},
			logs:     &fakeLogStore{logs: nil, err: nil, block: false, limit: 0},
			notFound: true,
		},
		{
			name:      "user directory failure",
			users:     &fakeDirectory{users: nil, err: errStoreDown},
			logs:      &fakeLogStore{logs: nil, err: nil, block: false, limit: 0},
			wantCause: errStoreDown,
		},
		{
			name:      "log store failure",
			users:     &fakeDirectory{users: map[string]gym.User{"member": member("")}, err: nil},
			logs:      &fakeLogStore{logs: nil, err: errStoreDown, block: false, limit: 0},
			wantCause: errStoreDown,
		},
		{
			name:      "fetch timeout",
			users:     &fakeDirectory{users: map[string]gym.User{"member": member("")}, err: nil},
			logs:      &fakeLogStore{logs: nil, err: nil, block: true, limit: 0},
			timeout:   10 * time.Millisecond,
			wantCause: context.DeadlineExceeded,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := newTestService(t, tt.users, tt.logs, Config{Location: time.UTC, FetchTimeout: tt.timeout})

			got, err := svc.GenerateWorkoutRecommendations(t.Context(), "member")
			if err == nil {
				t.Fatal("expected an error")
			}
			if diff := cmp.Diff(Bundle{}, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("expected no partial bundle (-want +got):\n%s", diff)
			}

			var recErr *Error
			if tt.notFound {
				if !errors.Is(err, ErrNotFound) || !errors.Is(err, gym.ErrNotFound) {
					t.Errorf("error = %v, want it to match ErrNotFound", err)
				}
				if errors.As(err, &recErr) {
					t.Errorf("unknown user should not be reported as a fetch failure: %v", err)
				}
				return
			}
			if !errors.As(err, &recErr) {
				t.Fatalf("error = %v, want *Error", err)
			}
			if recErr.Op != "generate workout recommendations" {
				t.Errorf("Op = %q", recErr.Op)
			}
			if !errors.Is(err, tt.wantCause) {
				t.Errorf("error = %v, want cause %v", err, tt.wantCause)
			}
			if errors.Is(err, ErrNotFound) {
				t.Errorf("fetch failure should not match ErrNotFound: %v", err)
			}
		})
	}
}

func TestService_PredictOptimalWorkoutTimes(t *testing.T) {
	t.Parallel()

	row := definition("Row", "back")
	morning := logAt(time.Date(2025, time.June, 9, 6, 0, 0, 0, time.UTC), performed(row, true))
	morning.Rating = ptr.Ref(5)
	morning.TotalDurationMinutes = 60
	evening := logAt(time.Date(2025, time.June, 8, 19, 0, 0, 0, time.UTC), performed(row, false))

	t.Run("report in configured time zone", func(t *testing.T) {
		t.Parallel()
		logs := &fakeLogStore{logs: []gym.WorkoutLog{morning, evening}, err: nil, block: false, limit: 0}
		svc := newTestService(t, &fakeDirectory{users: nil, err: errStoreDown}, logs,
			Config{Location: time.FixedZone("UTC+2", 2*60*60), FetchTimeout: 0})

		got, err := svc.PredictOptimalWorkoutTimes(t.Context(), "member")
		if err != nil {
			t.Fatalf("PredictOptimalWorkoutTimes() error = %v", err)
		}
		if logs.limit != OptimalTimeLogLimit {
			t.Errorf("requested %d logs, want %d", logs.limit, OptimalTimeLogLimit)
		}
		want := TimePerformanceReport{
			OptimalWorkoutHours: []int{8, 21},
			PerformanceData:     map[int]float64{8: 100, 21: 34},
			Recommendation:      "Your best performance times are around 8, 21 o'clock.",
		}
		if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
			t.Errorf("PredictOptimalWorkoutTimes() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("no history", func(t *testing.T) {
		t.Parallel()
		logs := &fakeLogStore{logs: []gym.WorkoutLog{}, err: nil, block: false, limit: 0}
		svc := newTestService(t, &fakeDirectory{users: nil, err: nil}, logs, Config{Location: nil, FetchTimeout: 0})

		got, err := svc.PredictOptimalWorkoutTimes(t.Context(), "nobody")
		if err != nil {
			t.Fatalf("PredictOptimalWorkoutTimes() error = %v", err)
		}
		if got.OptimalWorkoutHours == nil || len(got.OptimalWorkoutHours) != 0 {
			t.Errorf("OptimalWorkoutHours = %#v, want empty", got.OptimalWorkoutHours)
		}
		if got.PerformanceData == nil || len(got.PerformanceData) != 0 {
			t.Errorf("PerformanceData = %#v, want empty", got.PerformanceData)
		}
	})

	t.Run("store failure", func(t *testing.T) {
		t.Parallel()
		logs := &fakeLogStore{logs: nil, err: errStoreDown, block: false, limit: 0}
		svc := newTestService(t, &fakeDirectory{users: nil, err: nil}, logs, Config{Location: nil, FetchTimeout: 0})

		_, err := svc.PredictOptimalWorkoutTimes(t.Context(), "member")
		var recErr *Error
		if !errors.As(err, &recErr) || !errors.Is(err, errStoreDown) {
			t.Fatalf("error = %v, want *Error wrapping %v", err, errStoreDown)
		}
		if recErr.Op != "predict optimal workout times" {
			t.Errorf("Op = %q", recErr.Op)
		}
	})
}
