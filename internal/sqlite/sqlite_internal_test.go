package sqlite

import (
	"database/sql"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/myrjola/gymcrm/internal/testhelpers"
)

func TestNewDatabase(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	logger := testhelpers.NewLogger(io.Discard)

	db, err := NewDatabase(ctx, ":memory:", logger)
	if err != nil {
		t.Fatalf("NewDatabase() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	var version int
	if err = db.ReadOnly.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("query user_version: %v", err)
	}
	if version != schemaVersion {
		t.Errorf("user_version = %d, want %d", version, schemaVersion)
	}

	var exercises int
	if err = db.ReadOnly.QueryRowContext(ctx, "SELECT COUNT(*) FROM exercises").Scan(&exercises); err != nil {
		t.Fatalf("count exercises: %v", err)
	}
	if exercises == 0 {
		t.Error("expected fixtures to seed the exercise catalog")
	}

	if _, err = db.ReadOnly.ExecContext(ctx, "DELETE FROM exercises"); err == nil {
		t.Error("expected the read-only connection to reject writes")
	}
}

func TestDatabase_migrate_idempotent(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	logger := testhelpers.NewLogger(io.Discard)
	url := filepath.Join(t.TempDir(), "gymcrm.sqlite3")

	for range 2 {
		db, err := NewDatabase(ctx, url, logger)
		if err != nil {
			t.Fatalf("NewDatabase() error = %v", err)
		}
		var exercises int
		if err = db.ReadOnly.QueryRowContext(ctx, "SELECT COUNT(*) FROM exercises").Scan(&exercises); err != nil {
			t.Fatalf("count exercises: %v", err)
		}
		if exercises != 13 {
			t.Errorf("exercises = %d, want 13 after reopening", exercises)
		}
		if err = db.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}
}

func TestDatabase_WithTx_rollsBackOnError(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	db, err := NewDatabase(ctx, ":memory:", testhelpers.NewLogger(io.Discard))
	if err != nil {
		t.Fatalf("NewDatabase() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	err = db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM exercise_muscle_groups"); err != nil {
			return err
		}
		return errRollback
	})
	if !errors.Is(err, errRollback) {
		t.Fatalf("WithTx() error = %v, want %v", err, errRollback)
	}

	var groups int
	if err = db.ReadOnly.QueryRowContext(ctx, "SELECT COUNT(*) FROM exercise_muscle_groups").Scan(&groups); err != nil {
		t.Fatalf("count muscle groups: %v", err)
	}
	if groups == 0 {
		t.Error("expected the failed transaction to be rolled back")
	}
}

var errRollback = errors.New("rollback please")
