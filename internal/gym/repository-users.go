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

// sqliteUserRepository implements UserRepository.
type sqliteUserRepository struct {
	baseRepository
}

func newSQLiteUserRepository(db *sqlite.Database, logger *slog.Logger) *sqliteUserRepository {
	return &sqliteUserRepository{
		baseRepository: newBaseRepository(db, logger),
	}
}

const userColumns = `id, google_id, email, name, photo_url, role, business_id, fitness_level, fitness_goals,
	date_of_birth, created_at`

// rowScanner is implemented by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var (
		user        User
		goalsJSON   string
		dateOfBirth sql.NullString
		createdAt   string
	)
	if err := row.Scan(
		&user.ID,
		&user.GoogleID,
		&user.Email,
		&user.Name,
		&user.PhotoURL,
		&user.Role,
		&user.BusinessID,
		&user.FitnessLevel,
		&goalsJSON,
		&dateOfBirth,
		&createdAt,
	); err != nil {
		return User{}, err //nolint:wrapcheck // callers add context.
	}

	if err := json.Unmarshal([]byte(goalsJSON), &user.FitnessGoals); err != nil {
		return User{}, fmt.Errorf("unmarshal fitness goals: %w", err)
	}
	var err error
	if user.DateOfBirth, err = parseNullTimestamp(dateOfBirth); err != nil {
		return User{}, fmt.Errorf("parse date_of_birth: %w", err)
	}
	if user.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return User{}, fmt.Errorf("parse created_at: %w", err)
	}
	return user, nil
}

// Create inserts a new user and assigns it an ID.
func (r *sqliteUserRepository) Create(ctx context.Context, user User) (User, error) {
	user.ID = uuid.NewString()
	if user.FitnessGoals == nil {
		user.FitnessGoals = []string{}
	}
	goalsJSON, err := json.Marshal(user.FitnessGoals)
	if err != nil {
		return User{}, fmt.Errorf("marshal fitness goals: %w", err)
	}

	_, err = r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.GoogleID,
		user.Email,
		user.Name,
		user.PhotoURL,
		user.Role,
		user.BusinessID,
		user.FitnessLevel,
		string(goalsJSON),
		formatNullTimestamp(user.DateOfBirth),
		formatTimestamp(user.CreatedAt),
	)
	if isUniqueViolation(err) {
		return User{}, errors.Wrap(ErrConflict, "user already exists", slog.String("email", user.Email))
	}
	if err != nil {
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

// Get retrieves a user by ID.
func (r *sqliteUserRepository) Get(ctx context.Context, id string) (User, error) {
	row := r.db.ReadOnly.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("query user: %w", err)
	}
	return user, nil
}

// GetByGoogleID retrieves a user by the identity provider ID.
func (r *sqliteUserRepository) GetByGoogleID(ctx context.Context, googleID string) (User, error) {
	row := r.db.ReadOnly.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE google_id = ?`, googleID)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("query user by google id: %w", err)
	}
	return user, nil
}

// List returns the users of a business, or every user when businessID is empty.
func (r *sqliteUserRepository) List(ctx context.Context, businessID string) (_ []User, err error) {
	query := `SELECT ` + userColumns + ` FROM users`
	var args []any
	if businessID != "" {
		query += ` WHERE business_id = ?`
		args = append(args, businessID)
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.db.ReadOnly.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	users := []User{}
	for rows.Next() {
		var user User
		if user, err = scanUser(rows); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return users, nil
}

// Update modifies an existing user within a transaction.
func (r *sqliteUserRepository) Update(
	ctx context.Context,
	id string,
	updateFn func(user *User) (bool, error),
) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
		user, err := scanUser(row)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("query user: %w", err)
		}

		var updated bool
		if updated, err = updateFn(&user); err != nil {
			return fmt.Errorf("update user: %w", err)
		}
		if !updated {
			return nil
		}

		if user.FitnessGoals == nil {
			user.FitnessGoals = []string{}
		}
		goalsJSON, err := json.Marshal(user.FitnessGoals)
		if err != nil {
			return fmt.Errorf("marshal fitness goals: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE users
			SET email = ?, name = ?, photo_url = ?, role = ?, business_id = ?, fitness_level = ?,
			    fitness_goals = ?, date_of_birth = ?
			WHERE id = ?`,
			user.Email,
			user.Name,
			user.PhotoURL,
			user.Role,
			user.BusinessID,
			user.FitnessLevel,
			string(goalsJSON),
			formatNullTimestamp(user.DateOfBirth),
			id,
		)
		if isUniqueViolation(err) {
			return errors.Wrap(ErrConflict, "email already taken", slog.String("email", user.Email))
		}
		if err != nil {
			return fmt.Errorf("save user: %w", err)
		}
		return nil
	})
}
