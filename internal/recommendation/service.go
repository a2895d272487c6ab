package recommendation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/myrjola/gymcrm/internal/errors"
	"github.com/myrjola/gymcrm/internal/gym"
	"golang.org/x/sync/errgroup"
)

// UserDirectory looks up users. GetUser returns an error matching gym.ErrNotFound for unknown users.
type UserDirectory interface {
	GetUser(ctx context.Context, id string) (gym.User, error)
}

// WorkoutLogStore lists the most recent workout logs of a user, newest first.
type WorkoutLogStore interface {
	ListRecentWorkoutLogs(ctx context.Context, userID string, limit int) ([]gym.WorkoutLog, error)
}

// Config tunes the Service.
type Config struct {
	// Location is the time zone in which hours of day are reported. Defaults to UTC.
	Location *time.Location
	// FetchTimeout bounds the data fetches of one operation. Zero disables the timeout.
	FetchTimeout time.Duration
}

// Service derives workout insights from a user's profile and recent workout history.
type Service struct {
	users  UserDirectory
	logs   WorkoutLogStore
	logger *slog.Logger
	cfg    Config
	now    func() time.Time
}

// NewService creates a new recommendation service.
func NewService(users UserDirectory, logs WorkoutLogStore, logger *slog.Logger, cfg Config) *Service {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Service{
		users:  users,
		logs:   logs,
		logger: logger,
		cfg:    cfg,
		now:    time.Now,
	}
}

func (s *Service) fetchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.FetchTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.FetchTimeout)
}

// GenerateWorkoutRecommendations analyses the RecommendationLogLimit most recent workouts of the user.
//
// It returns an error matching ErrNotFound if the user does not exist and an *Error if fetching fails otherwise.
func (s *Service) GenerateWorkoutRecommendations(ctx context.Context, userID string) (Bundle, error) {
	const op = "generate workout recommendations"

	fetchCtx, cancel := s.fetchContext(ctx)
	defer cancel()

	var (
		user gym.User
		logs []gym.WorkoutLog
	)
	g, gctx := errgroup.WithContext(fetchCtx)
	g.Go(func() error {
		var err error
		if user, err = s.users.GetUser(gctx, userID); err != nil {
			return fmt.Errorf("get user: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if logs, err = s.logs.ListRecentWorkoutLogs(gctx, userID, RecommendationLogLimit); err != nil {
			return fmt.Errorf("list recent workout logs: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, gym.ErrNotFound) {
			return Bundle{}, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return Bundle{}, &Error{Op: op, Err: err}
	}

	now := s.now()
	bundle := Bundle{
		WorkoutFrequency:      analyzeWorkoutFrequency(logs, now),
		MuscleGroupBalance:    analyzeMuscleGroupBalance(logs),
		PersonalizedWorkout:   personalizedWorkout(user.FitnessLevel),
		RestDayRecommendation: optimalRestDays(logs),
		InjuryPreventionTips:  injuryPreventionTips(user, logs, now),
	}

	s.logger.LogAttrs(ctx, slog.LevelDebug, "generated workout recommendations",
		slog.String("user_id", userID),
		slog.Int("logs", len(logs)),
		slog.Int("weekly_frequency", bundle.WorkoutFrequency.CurrentFrequency),
		slog.Float64("balance_score", bundle.MuscleGroupBalance.BalanceScore))

	return bundle, nil
}

// PredictOptimalWorkoutTimes ranks the hours of day by the average performance of the OptimalTimeLogLimit most
// recent workouts started during them.
//
// The user is not looked up, so an unknown user gets the same empty report as a user without history.
func (s *Service) PredictOptimalWorkoutTimes(ctx context.Context, userID string) (TimePerformanceReport, error) {
	const op = "predict optimal workout times"

	fetchCtx, cancel := s.fetchContext(ctx)
	defer cancel()

	logs, err := s.logs.ListRecentWorkoutLogs(fetchCtx, userID, OptimalTimeLogLimit)
	if err != nil {
		return TimePerformanceReport{}, &Error{Op: op, Err: fmt.Errorf("list recent workout logs: %w", err)}
	}

	report := optimalWorkoutTimes(logs, s.cfg.Location)

	s.logger.LogAttrs(ctx, slog.LevelDebug, "predicted optimal workout times",
		slog.String("user_id", userID),
		slog.Int("logs", len(logs)),
		slog.Any("optimal_hours", report.OptimalWorkoutHours))

	return report, nil
}
