package gym

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/myrjola/gymcrm/internal/errors"
	"github.com/myrjola/gymcrm/internal/sqlite"
)

// sqliteExerciseRepository implements ExerciseRepository.
type sqliteExerciseRepository struct {
	baseRepository
}

func newSQLiteExerciseRepository(db *sqlite.Database, logger *slog.Logger) *sqliteExerciseRepository {
	return &sqliteExerciseRepository{
		baseRepository: newBaseRepository(db, logger),
	}
}

// Create inserts a custom exercise and its muscle groups.
func (r *sqliteExerciseRepository) Create(ctx context.Context, exercise Exercise) (Exercise, error) {
	if exercise.ID == "" {
		exercise.ID = uuid.NewString()
	}
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO exercises (id, name, category, difficulty) VALUES (?, ?, ?, ?)`,
			exercise.ID, exercise.Name, exercise.Category, exercise.Difficulty)
		if isUniqueViolation(err) {
			return errors.Wrap(ErrConflict, "exercise already exists", slog.String("exercise_id", exercise.ID))
		}
		if err != nil {
			return fmt.Errorf("insert exercise: %w", err)
		}
		for i, group := range exercise.MuscleGroups {
			if _, err = tx.ExecContext(ctx, `
				INSERT INTO exercise_muscle_groups (exercise_id, muscle_group, position) VALUES (?, ?, ?)`,
				exercise.ID, group, i); err != nil {
				return fmt.Errorf("insert muscle group %s: %w", group, err)
			}
		}
		return nil
	})
	if err != nil {
		return Exercise{}, err
	}
	return exercise, nil
}

// Get retrieves a single exercise by ID.
func (r *sqliteExerciseRepository) Get(ctx context.Context, id string) (Exercise, error) {
	exercises, err := r.getMany(ctx, []string{id})
	if err != nil {
		return Exercise{}, err
	}
	exercise, ok := exercises[id]
	if !ok {
		return Exercise{}, ErrNotFound
	}
	return exercise, nil
}

// List returns the whole catalog ordered by name.
func (r *sqliteExerciseRepository) List(ctx context.Context) (_ []Exercise, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, name, category, difficulty
		FROM exercises
		ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("query exercises: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	exercises := []Exercise{}
	ids := []string{}
	for rows.Next() {
		var exercise Exercise
		if err = rows.Scan(&exercise.ID, &exercise.Name, &exercise.Category, &exercise.Difficulty); err != nil {
			return nil, fmt.Errorf("scan exercise: %w", err)
		}
		exercises = append(exercises, exercise)
		ids = append(ids, exercise.ID)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	groups, err := r.fetchMuscleGroups(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range exercises {
		exercises[i].MuscleGroups = groups[exercises[i].ID]
		if exercises[i].MuscleGroups == nil {
			exercises[i].MuscleGroups = []string{}
		}
	}
	return exercises, nil
}

// getMany retrieves the exercises with the given IDs keyed by ID. Unknown IDs are absent from the result.
func (r *sqliteExerciseRepository) getMany(ctx context.Context, ids []string) (_ map[string]Exercise, err error) {
	result := make(map[string]Exercise, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, name, category, difficulty
		FROM exercises
		WHERE id IN (`+placeholders(len(ids))+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("query exercises: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	for rows.Next() {
		var exercise Exercise
		if err = rows.Scan(&exercise.ID, &exercise.Name, &exercise.Category, &exercise.Difficulty); err != nil {
			return nil, fmt.Errorf("scan exercise: %w", err)
		}
		exercise.MuscleGroups = []string{}
		result[exercise.ID] = exercise
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	groups, err := r.fetchMuscleGroups(ctx, ids)
	if err != nil {
		return nil, err
	}
	for id, g := range groups {
		if exercise, ok := result[id]; ok {
			exercise.MuscleGroups = g
			result[id] = exercise
		}
	}
	return result, nil
}

// fetchMuscleGroups retrieves the ordered muscle groups of the given exercises keyed by exercise ID.
func (r *sqliteExerciseRepository) fetchMuscleGroups(
	ctx context.Context,
	exerciseIDs []string,
) (_ map[string][]string, err error) {
	groups := make(map[string][]string, len(exerciseIDs))
	if len(exerciseIDs) == 0 {
		return groups, nil
	}
	args := make([]any, len(exerciseIDs))
	for i, id := range exerciseIDs {
		args[i] = id
	}

	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT exercise_id, muscle_group
		FROM exercise_muscle_groups
		WHERE exercise_id IN (`+placeholders(len(exerciseIDs))+`)
		ORDER BY exercise_id, position`, args...)
	if err != nil {
		return nil, fmt.Errorf("query muscle groups: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	for rows.Next() {
		var exerciseID, group string
		if err = rows.Scan(&exerciseID, &group); err != nil {
			return nil, fmt.Errorf("scan muscle group row: %w", err)
		}
		groups[exerciseID] = append(groups[exerciseID], group)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate muscle group rows: %w", err)
	}
	return groups, nil
}
