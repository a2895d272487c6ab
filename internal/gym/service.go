package gym

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/myrjola/gymcrm/internal/errors"
)

const (
	// DefaultLogLimit is used when ListRecentWorkoutLogs is called without a positive limit.
	DefaultLogLimit = 30
	// MaxLogLimit caps the number of logs returned by ListRecentWorkoutLogs.
	MaxLogLimit = 100

	minRating = 1
	maxRating = 5
)

// Service handles the business logic for members, the exercise catalog and workout logs.
type Service struct {
	repos  Repositories
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new gym service on top of the given storage backend.
func NewService(repos Repositories, logger *slog.Logger) *Service {
	return &Service{
		repos:  repos,
		logger: logger,
		now:    time.Now,
	}
}

// RegisterUser registers a user by identity provider ID.
//
// A user that is already registered is returned unchanged with created set to false.
func (s *Service) RegisterUser(ctx context.Context, reg Registration) (User, bool, error) {
	if reg.GoogleID == "" || reg.Email == "" {
		return User{}, false, errors.Wrap(ErrInvalid, "missing google id or email")
	}

	existing, err := s.repos.Users.GetByGoogleID(ctx, reg.GoogleID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return User{}, false, fmt.Errorf("get user by google id: %w", err)
	}

	role := reg.Role
	if role == "" {
		role = RoleMember
	}
	if !validRole(role) {
		return User{}, false, errors.Wrap(ErrInvalid, "unknown role", slog.String("role", string(role)))
	}

	user, err := s.repos.Users.Create(ctx, User{
		ID:           "",
		GoogleID:     reg.GoogleID,
		Name:         reg.Name,
		Email:        reg.Email,
		PhotoURL:     reg.PhotoURL,
		Role:         role,
		BusinessID:   reg.BusinessID,
		FitnessLevel: "",
		FitnessGoals: []string{},
		DateOfBirth:  nil,
		CreatedAt:    s.now(),
	})
	if err != nil {
		return User{}, false, fmt.Errorf("create user: %w", err)
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "registered user",
		slog.String("user_id", user.ID), slog.String("role", string(user.Role)))
	return user, true, nil
}

// GetUser retrieves a user by ID.
func (s *Service) GetUser(ctx context.Context, id string) (User, error) {
	user, err := s.repos.Users.Get(ctx, id)
	if err != nil {
		return User{}, fmt.Errorf("get user %s: %w", id, err)
	}
	return user, nil
}

// ListUsers lists every registered user.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	users, err := s.repos.Users.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// ListUsersByBusiness lists the users of one business.
func (s *Service) ListUsersByBusiness(ctx context.Context, businessID string) ([]User, error) {
	if businessID == "" {
		return nil, errors.Wrap(ErrInvalid, "missing business id")
	}
	users, err := s.repos.Users.List(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("list users of business %s: %w", businessID, err)
	}
	return users, nil
}

// UpdateProfile replaces the fitness profile of a user.
func (s *Service) UpdateProfile(ctx context.Context, id string, profile Profile) (User, error) {
	if profile.FitnessLevel != "" && !validFitnessLevel(profile.FitnessLevel) {
		return User{}, errors.Wrap(ErrInvalid, "unknown fitness level",
			slog.String("fitness_level", string(profile.FitnessLevel)))
	}
	if profile.DateOfBirth != nil && profile.DateOfBirth.After(s.now()) {
		return User{}, errors.Wrap(ErrInvalid, "date of birth in the future")
	}

	goals := make([]string, 0, len(profile.FitnessGoals))
	for _, goal := range profile.FitnessGoals {
		if goal = strings.TrimSpace(goal); goal != "" {
			goals = append(goals, goal)
		}
	}

	err := s.repos.Users.Update(ctx, id, func(user *User) (bool, error) {
		user.FitnessLevel = profile.FitnessLevel
		user.FitnessGoals = goals
		user.DateOfBirth = profile.DateOfBirth
		return true, nil
	})
	if err != nil {
		return User{}, fmt.Errorf("update profile of user %s: %w", id, err)
	}
	return s.GetUser(ctx, id)
}

// ListExercises returns the exercise catalog.
func (s *Service) ListExercises(ctx context.Context) ([]Exercise, error) {
	exercises, err := s.repos.Exercises.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	return exercises, nil
}

// CreateExercise adds a custom exercise to the catalog.
func (s *Service) CreateExercise(ctx context.Context, exercise Exercise) (Exercise, error) {
	exercise.Name = strings.TrimSpace(exercise.Name)
	if exercise.Name == "" {
		return Exercise{}, errors.Wrap(ErrInvalid, "missing exercise name")
	}
	if !validCategory(exercise.Category) {
		return Exercise{}, errors.Wrap(ErrInvalid, "unknown category", slog.String("category", string(exercise.Category)))
	}
	if exercise.Difficulty == "" {
		exercise.Difficulty = FitnessLevelBeginner
	}
	if !validFitnessLevel(exercise.Difficulty) {
		return Exercise{}, errors.Wrap(ErrInvalid, "unknown difficulty",
			slog.String("difficulty", string(exercise.Difficulty)))
	}
	groups := make([]string, 0, len(exercise.MuscleGroups))
	for _, group := range exercise.MuscleGroups {
		if group = strings.ToLower(strings.TrimSpace(group)); group != "" && !slices.Contains(groups, group) {
			groups = append(groups, group)
		}
	}
	exercise.MuscleGroups = groups

	created, err := s.repos.Exercises.Create(ctx, exercise)
	if err != nil {
		return Exercise{}, fmt.Errorf("create exercise: %w", err)
	}
	return created, nil
}

// RecordWorkoutLog validates and stores a workout log. The returned log has its exercise definitions resolved.
func (s *Service) RecordWorkoutLog(ctx context.Context, log WorkoutLog) (WorkoutLog, error) {
	user, err := s.repos.Users.Get(ctx, log.UserID)
	if err != nil {
		return WorkoutLog{}, fmt.Errorf("get user %s: %w", log.UserID, err)
	}

	if log.StartTime.IsZero() {
		return WorkoutLog{}, errors.Wrap(ErrInvalid, "missing start time")
	}
	if log.EndTime != nil && log.EndTime.Before(log.StartTime) {
		return WorkoutLog{}, errors.Wrap(ErrInvalid, "end time before start time")
	}
	if log.Rating != nil && (*log.Rating < minRating || *log.Rating > maxRating) {
		return WorkoutLog{}, errors.Wrap(ErrInvalid, "rating out of range", slog.Int("rating", *log.Rating))
	}
	if log.TotalDurationMinutes < 0 || log.CaloriesBurned < 0 {
		return WorkoutLog{}, errors.Wrap(ErrInvalid, "negative duration or calories")
	}
	if log.Status == "" {
		log.Status = LogStatusInProgress
	}
	if !validLogStatus(log.Status) {
		return WorkoutLog{}, errors.Wrap(ErrInvalid, "unknown status", slog.String("status", string(log.Status)))
	}
	if log.BusinessID == "" {
		log.BusinessID = user.BusinessID
	}
	if log.TotalDurationMinutes == 0 && log.EndTime != nil {
		log.TotalDurationMinutes = log.EndTime.Sub(log.StartTime).Minutes()
	}
	log.Exercises = slices.Clone(log.Exercises)
	if log.Exercises == nil {
		log.Exercises = []PerformedExercise{}
	}

	for i := range log.Exercises {
		var exercise Exercise
		if exercise, err = s.repos.Exercises.Get(ctx, log.Exercises[i].ExerciseID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return WorkoutLog{}, errors.Wrap(ErrInvalid, "unknown exercise",
					slog.String("exercise_id", log.Exercises[i].ExerciseID))
			}
			return WorkoutLog{}, fmt.Errorf("get exercise %s: %w", log.Exercises[i].ExerciseID, err)
		}
		log.Exercises[i].Exercise = &exercise
		if log.Exercises[i].Sets == nil {
			log.Exercises[i].Sets = []PerformedSet{}
		}
	}
	log.CreatedAt = s.now()

	created, err := s.repos.Logs.Create(ctx, log)
	if err != nil {
		return WorkoutLog{}, fmt.Errorf("create workout log: %w", err)
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "recorded workout log",
		slog.String("user_id", created.UserID), slog.String("log_id", created.ID),
		slog.Int("exercises", len(created.Exercises)))
	return created, nil
}

// ListRecentWorkoutLogs returns at most limit logs of the user, newest first.
//
// A non-positive limit falls back to DefaultLogLimit and limits above MaxLogLimit are capped.
func (s *Service) ListRecentWorkoutLogs(ctx context.Context, userID string, limit int) ([]WorkoutLog, error) {
	if limit <= 0 {
		limit = DefaultLogLimit
	}
	limit = min(limit, MaxLogLimit)
	logs, err := s.repos.Logs.ListRecent(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent workout logs of user %s: %w", userID, err)
	}
	return logs, nil
}

func validRole(r Role) bool {
	return slices.Contains([]Role{RoleSuperAdmin, RoleGymAdmin, RoleTrainer, RoleMember}, r)
}

func validFitnessLevel(l FitnessLevel) bool {
	return slices.Contains([]FitnessLevel{FitnessLevelBeginner, FitnessLevelIntermediate, FitnessLevelAdvanced}, l)
}

func validCategory(c Category) bool {
	return slices.Contains([]Category{
		CategoryCardio, CategoryStrength, CategoryFlexibility, CategoryBalance, CategorySports,
	}, c)
}

func validLogStatus(s LogStatus) bool {
	return slices.Contains([]LogStatus{
		LogStatusInProgress, LogStatusCompleted, LogStatusPaused, LogStatusCancelled,
	}, s)
}
