package gym

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/myrjola/gymcrm/internal/errors"
	"github.com/myrjola/gymcrm/internal/sqlite"
)

var (
	// ErrNotFound is returned when the requested user, exercise or log does not exist.
	ErrNotFound = errors.NewSentinel("not found")
	// ErrInvalid is returned when input fails validation.
	ErrInvalid = errors.NewSentinel("invalid input")
	// ErrConflict is returned when a unique field such as email is already taken.
	ErrConflict = errors.NewSentinel("conflict")
)

// UserRepository stores users.
type UserRepository interface {
	Create(ctx context.Context, user User) (User, error)
	Get(ctx context.Context, id string) (User, error)
	GetByGoogleID(ctx context.Context, googleID string) (User, error)
	// List returns users ordered by creation time. An empty businessID lists every user.
	List(ctx context.Context, businessID string) ([]User, error)
	// Update loads the user, calls updateFn and persists the result if updateFn reports a change.
	Update(ctx context.Context, id string, updateFn func(user *User) (bool, error)) error
}

// ExerciseRepository stores the exercise catalog.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise Exercise) (Exercise, error)
	Get(ctx context.Context, id string) (Exercise, error)
	List(ctx context.Context) ([]Exercise, error)
}

// WorkoutLogRepository stores workout logs.
type WorkoutLogRepository interface {
	Create(ctx context.Context, log WorkoutLog) (WorkoutLog, error)
	// ListRecent returns at most limit logs of the user, newest start time first with creation time as the
	// tie-breaker. Exercise definitions are resolved.
	ListRecent(ctx context.Context, userID string, limit int) ([]WorkoutLog, error)
}

// Repositories bundles the repositories of one storage backend.
type Repositories struct {
	Users     UserRepository
	Exercises ExerciseRepository
	Logs      WorkoutLogRepository
}

// NewSQLiteRepositories creates the SQLite-backed repositories.
func NewSQLiteRepositories(db *sqlite.Database, logger *slog.Logger) Repositories {
	exercises := newSQLiteExerciseRepository(db, logger)
	return Repositories{
		Users:     newSQLiteUserRepository(db, logger),
		Exercises: exercises,
		Logs:      newSQLiteWorkoutLogRepository(db, logger, exercises),
	}
}

// baseRepository provides common functionality for all SQLite repositories.
type baseRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func newBaseRepository(db *sqlite.Database, logger *slog.Logger) baseRepository {
	return baseRepository{
		db:     db,
		logger: logger,
	}
}

const timestampFormat = "2006-01-02T15:04:05.000Z"

// formatTimestamp formats t in UTC with millisecond precision so that timestamps sort lexicographically.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampFormat)
}

func formatNullTimestamp(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{String: "", Valid: false}
	}
	return sql.NullString{String: formatTimestamp(*t), Valid: true}
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(timestampFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

func parseNullTimestamp(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil //nolint:nilnil // a NULL timestamp is not an error.
	}
	t, err := parseTimestamp(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// placeholders returns "?, ?, ?" with n placeholders for IN clauses.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}
