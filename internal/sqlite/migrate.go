package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// schemaVersion must be bumped whenever schema.sql changes.
const schemaVersion = 1

// migrate applies schemaDefinition when the database is older than version and records the version in
// PRAGMA user_version. The schema uses IF NOT EXISTS so that applying it to a partially migrated database is safe.
func (db *Database) migrate(ctx context.Context, version int, schemaDefinition string) error {
	start := time.Now()

	var current int
	if err := db.ReadWrite.QueryRowContext(ctx, "PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("query user_version: %w", err)
	}
	if current >= version {
		db.logger.LogAttrs(ctx, slog.LevelDebug, "database schema up to date", slog.Int("version", current))
		return nil
	}

	tx, err := db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("start transaction: %w", err)
	}
	defer db.rollback(ctx, tx)()

	if _, err = tx.ExecContext(ctx, schemaDefinition); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	// PRAGMA doesn't support bound parameters.
	if _, err = tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", version)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	db.logger.LogAttrs(ctx, slog.LevelInfo, "migrated database",
		slog.Int("from_version", current),
		slog.Int("to_version", version),
		slog.Duration("duration", time.Since(start)))

	return nil
}

// rollback rolls back given transaction.
func (db *Database) rollback(ctx context.Context, tx *sql.Tx) func() {
	return func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			err = fmt.Errorf("rollback transaction: %w", err)
			db.logger.LogAttrs(ctx, slog.LevelError, "failed to rollback transaction", slog.Any("error", err))
		}
	}
}

// WithTx runs fn inside a read-write transaction and commits if fn succeeds.
func (db *Database) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("start transaction: %w", err)
	}
	defer db.rollback(ctx, tx)()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
