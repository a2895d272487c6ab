package gym

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/myrjola/gymcrm/internal/errors"
	"github.com/myrjola/gymcrm/internal/sqlite"
)

// sqliteWorkoutLogRepository implements WorkoutLogRepository.
type sqliteWorkoutLogRepository struct {
	baseRepository
	exerciseRepo *sqliteExerciseRepository
}

func newSQLiteWorkoutLogRepository(
	db *sqlite.Database,
	logger *slog.Logger,
	exerciseRepo *sqliteExerciseRepository,
) *sqliteWorkoutLogRepository {
	return &sqliteWorkoutLogRepository{
		baseRepository: newBaseRepository(db, logger),
		exerciseRepo:   exerciseRepo,
	}
}

// Create inserts the log and its performed exercises in one transaction.
func (r *sqliteWorkoutLogRepository) Create(ctx context.Context, log WorkoutLog) (WorkoutLog, error) {
	log.ID = uuid.NewString()
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var rating sql.NullInt64
		if log.Rating != nil {
			rating = sql.NullInt64{Int64: int64(*log.Rating), Valid: true}
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO workout_logs (id, user_id, workout_id, business_id, start_time, end_time, total_duration,
			                          calories_burned, rating, notes, status, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			log.ID,
			log.UserID,
			log.WorkoutID,
			log.BusinessID,
			formatTimestamp(log.StartTime),
			formatNullTimestamp(log.EndTime),
			log.TotalDurationMinutes,
			log.CaloriesBurned,
			rating,
			log.Notes,
			log.Status,
			formatTimestamp(log.CreatedAt),
		); err != nil {
			return fmt.Errorf("insert workout log: %w", err)
		}

		for i, ex := range log.Exercises {
			sets := ex.Sets
			if sets == nil {
				sets = []PerformedSet{}
			}
			setsJSON, err := json.Marshal(sets)
			if err != nil {
				return fmt.Errorf("marshal sets: %w", err)
			}
			if _, err = tx.ExecContext(ctx, `
				INSERT INTO workout_log_exercises (log_id, position, exercise_id, completed, sets)
				VALUES (?, ?, ?, ?, ?)`,
				log.ID, i, ex.ExerciseID, ex.Completed, string(setsJSON)); err != nil {
				return fmt.Errorf("insert performed exercise %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return WorkoutLog{}, err
	}
	return log, nil
}

// ListRecent returns the most recent logs of a user with exercise definitions resolved.
func (r *sqliteWorkoutLogRepository) ListRecent(
	ctx context.Context,
	userID string,
	limit int,
) (_ []WorkoutLog, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, user_id, workout_id, business_id, start_time, end_time, total_duration, calories_burned, rating,
		       notes, status, created_at
		FROM workout_logs
		WHERE user_id = ?
		ORDER BY start_time DESC, created_at DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query workout logs: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	logs := []WorkoutLog{}
	index := map[string]int{}
	for rows.Next() {
		var log WorkoutLog
		if log, err = scanWorkoutLog(rows); err != nil {
			return nil, fmt.Errorf("scan workout log: %w", err)
		}
		index[log.ID] = len(logs)
		logs = append(logs, log)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	if err = r.loadPerformedExercises(ctx, logs, index); err != nil {
		return nil, err
	}
	return logs, nil
}

func scanWorkoutLog(row rowScanner) (WorkoutLog, error) {
	var (
		log       WorkoutLog
		startTime string
		endTime   sql.NullString
		rating    sql.NullInt64
		createdAt string
	)
	if err := row.Scan(
		&log.ID,
		&log.UserID,
		&log.WorkoutID,
		&log.BusinessID,
		&startTime,
		&endTime,
		&log.TotalDurationMinutes,
		&log.CaloriesBurned,
		&rating,
		&log.Notes,
		&log.Status,
		&createdAt,
	); err != nil {
		return WorkoutLog{}, err //nolint:wrapcheck // callers add context.
	}

	var err error
	if log.StartTime, err = parseTimestamp(startTime); err != nil {
		return WorkoutLog{}, fmt.Errorf("parse start_time: %w", err)
	}
	if log.EndTime, err = parseNullTimestamp(endTime); err != nil {
		return WorkoutLog{}, fmt.Errorf("parse end_time: %w", err)
	}
	if log.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return WorkoutLog{}, fmt.Errorf("parse created_at: %w", err)
	}
	if rating.Valid {
		v := int(rating.Int64)
		log.Rating = &v
	}
	log.Exercises = []PerformedExercise{}
	return log, nil
}

// loadPerformedExercises populates the exercises of logs. index maps log ID to its position in logs.
func (r *sqliteWorkoutLogRepository) loadPerformedExercises(
	ctx context.Context,
	logs []WorkoutLog,
	index map[string]int,
) (err error) {
	if len(logs) == 0 {
		return nil
	}
	args := make([]any, len(logs))
	for i, log := range logs {
		args[i] = log.ID
	}

	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT log_id, exercise_id, completed, sets
		FROM workout_log_exercises
		WHERE log_id IN (`+placeholders(len(logs))+`)
		ORDER BY log_id, position`, args...)
	if err != nil {
		return fmt.Errorf("query performed exercises: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	exerciseIDs := []string{}
	seen := map[string]bool{}
	for rows.Next() {
		var (
			logID    string
			ex       PerformedExercise
			setsJSON string
		)
		if err = rows.Scan(&logID, &ex.ExerciseID, &ex.Completed, &setsJSON); err != nil {
			return fmt.Errorf("scan performed exercise: %w", err)
		}
		if err = json.Unmarshal([]byte(setsJSON), &ex.Sets); err != nil {
			return fmt.Errorf("unmarshal sets of log %s: %w", logID, err)
		}
		i := index[logID]
		logs[i].Exercises = append(logs[i].Exercises, ex)
		if !seen[ex.ExerciseID] {
			seen[ex.ExerciseID] = true
			exerciseIDs = append(exerciseIDs, ex.ExerciseID)
		}
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("rows error: %w", err)
	}

	definitions, err := r.exerciseRepo.getMany(ctx, exerciseIDs)
	if err != nil {
		return fmt.Errorf("resolve exercises: %w", err)
	}
	for i := range logs {
		for j := range logs[i].Exercises {
			if def, ok := definitions[logs[i].Exercises[j].ExerciseID]; ok {
				logs[i].Exercises[j].Exercise = &def
			}
		}
	}
	return nil
}
