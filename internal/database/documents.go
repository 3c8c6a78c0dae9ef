package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when no document matches the owner and id.
var ErrNotFound = errors.New("record not found")

// withTx runs fn inside a transaction, committing only when fn succeeds.
// Errors returned by fn are passed back unwrapped so callers can classify them.
func (db *DB) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	// Go Pattern: Rollback after Commit is a no-op, so deferring it is safe
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// forUpdate locks the selected row on Postgres. SQLite serializes writers
// already, and does not support the clause.
func (db *DB) forUpdate() string {
	if db.dialect == Postgres {
		return " FOR UPDATE"
	}
	return ""
}

// getDocument reads one raw JSON document.
func getDocument(ctx context.Context, q sqlx.QueryerContext, query string, args ...any) ([]byte, error) {
	var doc []byte
	err := sqlx.GetContext(ctx, q, &doc, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}
