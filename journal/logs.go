package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Action types written to the audit trail.
const (
	ActionAddTrade      = "ADD_TRADE"
	ActionDeleteTrade   = "DELETE_TRADE"
	ActionAddCapital    = "ADD_CAPITAL"
	ActionSQLQuery      = "SQL_QUERY"
	ActionEnrich        = "ENRICH"
	ActionTrimLogs      = "TRIM_LOGS"
	ActionDeleteAllLogs = "DELETE_ALL_LOGS"
)

// Log categories.
const (
	CategoryTrade    = "TRADE"
	CategoryCapital  = "CAPITAL"
	CategoryDatabase = "DATABASE"
	CategorySystem   = "SYSTEM"
)

// DefaultLogKeep is how many entries TrimLogs keeps when asked for zero.
const DefaultLogKeep = 25

// LogEntry is one row of the user-visible audit trail.
type LogEntry struct {
	ID          int64     `db:"id" json:"id"`
	Timestamp   time.Time `db:"timestamp" json:"timestamp"`
	ActionType  string    `db:"action_type" json:"action_type"`
	Category    string    `db:"action_category" json:"category"`
	Description string    `db:"description" json:"description"`
	Details     string    `db:"details" json:"details,omitempty"`
	IsRead      bool      `db:"is_read" json:"is_read"`
}

// NewLogEntry builds an entry, encoding details as JSON when non-nil.
func NewLogEntry(action, category, description string, details any) LogEntry {
	e := LogEntry{ActionType: action, Category: category, Description: description}
	if details != nil {
		if b, err := json.Marshal(details); err == nil {
			e.Details = string(b)
		}
	}
	return e
}

func (j *SQLite) AddLog(ctx context.Context, e LogEntry) (int64, error) {
	if e.Timestamp.IsZero() {
		e.Timestamp = j.now()
	}
	res, err := j.db.NamedExecContext(ctx, `
		INSERT INTO logs (timestamp, action_type, action_category, description, details)
		VALUES (:timestamp, :action_type, :action_category, :description, :details)`, &e)
	if err != nil {
		return 0, fmt.Errorf("add log: %w", err)
	}
	return res.LastInsertId()
}

// ListLogs returns entries newest first. A limit of zero or less means all.
func (j *SQLite) ListLogs(ctx context.Context, limit int) ([]LogEntry, error) {
	if limit <= 0 {
		limit = -1
	}
	out := []LogEntry{}
	err := j.db.SelectContext(ctx, &out, `
		SELECT id, timestamp, action_type, action_category, description,
		       COALESCE(details, '') AS details, COALESCE(is_read, 0) AS is_read
		FROM logs
		ORDER BY timestamp DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	return out, nil
}

// DeleteAllLogs empties the trail and returns how many entries were removed.
func (j *SQLite) DeleteAllLogs(ctx context.Context) (int64, error) {
	res, err := j.db.ExecContext(ctx, `DELETE FROM logs`)
	if err != nil {
		return 0, fmt.Errorf("delete logs: %w", err)
	}
	return res.RowsAffected()
}

// TrimLogs keeps the keep most recent entries and returns how many were
// removed.
func (j *SQLite) TrimLogs(ctx context.Context, keep int) (int64, error) {
	if keep <= 0 {
		keep = DefaultLogKeep
	}
	res, err := j.db.ExecContext(ctx, `
		DELETE FROM logs
		WHERE id NOT IN (
			SELECT id FROM logs ORDER BY timestamp DESC, id DESC LIMIT ?
		)`, keep)
	if err != nil {
		return 0, fmt.Errorf("trim logs: %w", err)
	}
	return res.RowsAffected()
}

func (j *SQLite) UnreadLogCount(ctx context.Context) (int, error) {
	var n int
	if err := j.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM logs WHERE COALESCE(is_read, 0) = 0`); err != nil {
		return 0, fmt.Errorf("unread logs: %w", err)
	}
	return n, nil
}

func (j *SQLite) MarkLogsRead(ctx context.Context) error {
	if _, err := j.db.ExecContext(ctx, `UPDATE logs SET is_read = 1 WHERE COALESCE(is_read, 0) = 0`); err != nil {
		return fmt.Errorf("mark logs read: %w", err)
	}
	return nil
}

// ClearLogTrail deletes every entry and then records the deletion, so the
// new trail starts with a DELETE_ALL_LOGS entry.
func (j *SQLite) ClearLogTrail(ctx context.Context) (int64, error) {
	n, err := j.DeleteAllLogs(ctx)
	if err != nil {
		return 0, err
	}
	desc := fmt.Sprintf("All logs deleted (%d entries removed)", n)
	if _, err := j.AddLog(ctx, NewLogEntry(ActionDeleteAllLogs, CategorySystem, desc, nil)); err != nil {
		return n, err
	}
	return n, nil
}

// TrimLogTrail trims to keep entries and records the trim.
func (j *SQLite) TrimLogTrail(ctx context.Context, keep int) (int64, error) {
	if keep <= 0 {
		keep = DefaultLogKeep
	}
	n, err := j.TrimLogs(ctx, keep)
	if err != nil {
		return 0, err
	}
	desc := fmt.Sprintf("Logs trimmed, kept %d most recent (%d entries removed)", keep, n)
	if _, err := j.AddLog(ctx, NewLogEntry(ActionTrimLogs, CategorySystem, desc, nil)); err != nil {
		return n, err
	}
	return n, nil
}
