package repositories

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
)

func openScratchDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "tx.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec("CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT NOT NULL)"); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}
	return db
}

func countNotes(t *testing.T, db *sql.DB) int {
	t.Helper()

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM notes").Scan(&n); err != nil {
		t.Fatalf("Failed to count notes: %v", err)
	}
	return n
}

func insertNote(ctx context.Context, tx *sql.Tx, body string) error {
	_, err := tx.ExecContext(ctx, "INSERT INTO notes (body) VALUES (?)", body)
	return err
}

func TestWithTxCommits(t *testing.T) {
	db := openScratchDB(t)
	ctx := context.Background()

	err := WithTx(ctx, db, func(tx *sql.Tx) error {
		if err := insertNote(ctx, tx, "first"); err != nil {
			return err
		}
		return insertNote(ctx, tx, "second")
	})
	if err != nil {
		t.Fatalf("Transaction failed: %v", err)
	}
	if n := countNotes(t, db); n != 2 {
		t.Errorf("Expected 2 notes, got %d", n)
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	db := openScratchDB(t)
	ctx := context.Background()
	errStop := errors.New("stop")

	err := WithTx(ctx, db, func(tx *sql.Tx) error {
		if err := insertNote(ctx, tx, "discarded"); err != nil {
			return err
		}
		return errStop
	})
	if !errors.Is(err, errStop) {
		t.Fatalf("Expected the callback error, got %v", err)
	}
	if n := countNotes(t, db); n != 0 {
		t.Errorf("Expected rollback to leave no notes, got %d", n)
	}
}

func TestWithTxRollsBackOnPanic(t *testing.T) {
	db := openScratchDB(t)
	ctx := context.Background()

	func() {
		defer func() {
			if recover() == nil {
				t.Error("Expected the panic to propagate")
			}
		}()
		WithTx(ctx, db, func(tx *sql.Tx) error {
			if err := insertNote(ctx, tx, "discarded"); err != nil {
				return err
			}
			panic("boom")
		})
	}()

	if n := countNotes(t, db); n != 0 {
		t.Errorf("Expected rollback to leave no notes, got %d", n)
	}
}
