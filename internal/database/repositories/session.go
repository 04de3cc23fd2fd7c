package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"attentionos/internal/analytics"
	"attentionos/internal/analytics/models"
	"attentionos/pkg/logger"
)

// ErrNotFound is returned when a row does not exist
var ErrNotFound = errors.New("not found")

// SessionRepository handles database operations for work sessions
type SessionRepository struct {
	db     *sql.DB
	logger *logger.ColoredLogger
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{
		db:     db,
		logger: logger.CreateComponentLogger("SessionRepo", logger.ColorBlue),
	}
}

const sessionColumns = `
	id,
	COALESCE(start_time, ''),
	COALESCE(end_time, start_time, ''),
	COALESCE(total_active_seconds, 0),
	COALESCE(total_idle_seconds, 0),
	COALESCE(app_switches, 0),
	COALESCE(focus_score, 0)
`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (models.SessionRecord, error) {
	var rec models.SessionRecord
	err := row.Scan(
		&rec.ID,
		&rec.StartTime,
		&rec.EndTime,
		&rec.TotalActiveSeconds,
		&rec.TotalIdleSeconds,
		&rec.AppSwitches,
		&rec.FocusScore,
	)
	return rec, err
}

// ListSessionRecords returns every stored session, most recent first
func (r *SessionRepository) ListSessionRecords(ctx context.Context) ([]models.SessionRecord, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions ORDER BY start_time DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	records := make([]models.SessionRecord, 0)
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}

	return records, nil
}

// GetSessionRecord returns a single session by id
func (r *SessionRepository) GetSessionRecord(ctx context.Context, id int) (models.SessionRecord, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = ?`

	rec, err := scanSession(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.SessionRecord{}, fmt.Errorf("session %d: %w", id, ErrNotFound)
		}
		return models.SessionRecord{}, fmt.Errorf("failed to get session %d: %w", id, err)
	}
	return rec, nil
}

// CreateSession inserts a session. A zero id lets SQLite assign one.
func (r *SessionRepository) CreateSession(ctx context.Context, rec models.SessionRecord) (models.SessionRecord, error) {
	id, err := insertSession(ctx, r.db, rec, false)
	if err != nil {
		return models.SessionRecord{}, fmt.Errorf("failed to create session: %w", err)
	}
	rec.ID = id

	r.logger.Debug("Created session %d starting %s", rec.ID, rec.StartTime)
	return rec, nil
}

// ImportSessions stores records in one transaction, replacing rows with the
// same id. It returns the number of rows written.
func (r *SessionRepository) ImportSessions(ctx context.Context, records []models.SessionRecord) (int, error) {
	err := WithTx(ctx, r.db, func(tx *sql.Tx) error {
		for i, rec := range records {
			if _, err := insertSession(ctx, tx, rec, true); err != nil {
				return fmt.Errorf("failed to import record %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	r.logger.Info("Imported %d sessions", len(records))
	return len(records), nil
}

// CountSessions returns the number of stored sessions
func (r *SessionRepository) CountSessions(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sessions").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return count, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func insertSession(ctx context.Context, db execer, rec models.SessionRecord, replace bool) (int, error) {
	verb := "INSERT"
	if replace {
		verb = "INSERT OR REPLACE"
	}

	var id interface{}
	if rec.ID > 0 {
		id = rec.ID
	}

	result, err := db.ExecContext(ctx, verb+` INTO sessions
		(id, start_time, end_time, total_active_seconds, total_idle_seconds, app_switches, focus_score)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, rec.StartTime, rec.EndTime, rec.TotalActiveSeconds, rec.TotalIdleSeconds,
		rec.AppSwitches, rec.FocusScore,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("session %d: %w", rec.ID, analytics.ErrSessionExists)
		}
		return 0, err
	}

	if rec.ID > 0 {
		return rec.ID, nil
	}
	lastID, err := result.LastInsertId()
	return int(lastID), err
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
