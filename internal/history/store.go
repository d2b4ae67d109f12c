// Package history keeps every benchmark run in a local SQLite database so
// results can be compared across sessions.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ppiankov/benchforge/internal/runner"
	"github.com/ppiankov/benchforge/internal/target"
)

// DefaultPath returns the default database location.
func DefaultPath() string {
	return filepath.Join(".benchforge", "history.db")
}

// Session is one recorded benchmark session.
type Session struct {
	ID        string
	StartedAt time.Time
	EndedAt   time.Time
	TaskCount int
	Modes     []target.Mode
	Targets   []string
	Outcome   string
}

// Run is one recorded benchmark run.
type Run struct {
	SessionID string
	TargetID  string
	Mode      target.Mode
	TaskCount int
	Success   bool
	ElapsedMs int64
	StartedAt time.Time
	Error     string
}

// Filter narrows Recent. Zero values match everything.
type Filter struct {
	TargetID string
	Mode     target.Mode
	Limit    int
}

// Store provides SQLite-backed run history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path. ":memory:" is accepted for
// tests.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordSession inserts a session or updates its end time and outcome.
func (s *Store) RecordSession(ctx context.Context, sess Session) error {
	modes := make([]string, len(sess.Modes))
	for i, m := range sess.Modes {
		modes[i] = string(m)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, started_at, ended_at, task_count, modes, targets, outcome)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			ended_at = excluded.ended_at,
			outcome = excluded.outcome
	`,
		sess.ID,
		sess.StartedAt.UnixMilli(),
		unixMilli(sess.EndedAt),
		sess.TaskCount,
		strings.Join(modes, ","),
		strings.Join(sess.Targets, ","),
		sess.Outcome,
	)
	if err != nil {
		return fmt.Errorf("record session %s: %w", sess.ID, err)
	}
	return nil
}

// RecordRuns stores the results of one mode run in a single transaction.
func (s *Store) RecordRuns(ctx context.Context, sessionID string, results []runner.RunResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO runs (session_id, target_id, mode, task_count, success, elapsed_ms, started_at, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range results {
		if _, err := stmt.ExecContext(ctx,
			sessionID, r.TargetID, string(r.Mode), r.TaskCount,
			r.Success, r.ElapsedMs, r.StartedAt.UnixMilli(), r.Error,
		); err != nil {
			return fmt.Errorf("insert run %s/%s: %w", r.TargetID, r.Mode, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

const runColumns = `session_id, target_id, mode, task_count, success, elapsed_ms, started_at, error`

// Recent returns the newest runs first.
func (s *Store) Recent(ctx context.Context, f Filter) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE 1=1`
	var args []any

	if f.TargetID != "" {
		query += " AND target_id = ?"
		args = append(args, f.TargetID)
	}
	if f.Mode != "" {
		query += " AND mode = ?"
		args = append(args, string(f.Mode))
	}
	query += " ORDER BY started_at DESC, id DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	return s.queryRuns(ctx, query, args...)
}

// Best returns the fastest successful run for every target, mode and task
// count combination matching f. f.Limit caps the number of combinations.
func (s *Store) Best(ctx context.Context, f Filter) ([]Run, error) {
	// SQLite takes bare columns from the row that holds the MIN().
	query := `SELECT session_id, target_id, mode, task_count, success, MIN(elapsed_ms), started_at, error
		FROM runs WHERE success = 1`
	var args []any

	if f.TargetID != "" {
		query += " AND target_id = ?"
		args = append(args, f.TargetID)
	}
	if f.Mode != "" {
		query += " AND mode = ?"
		args = append(args, string(f.Mode))
	}
	query += " GROUP BY target_id, mode, task_count ORDER BY mode, task_count, MIN(elapsed_ms), target_id"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	return s.queryRuns(ctx, query, args...)
}

// Sessions returns the newest sessions first.
func (s *Store) Sessions(ctx context.Context, limit int) ([]Session, error) {
	query := `SELECT id, started_at, ended_at, task_count, modes, targets, outcome FROM sessions ORDER BY started_at DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var (
			sess           Session
			started        int64
			ended          sql.NullInt64
			modes, targets string
		)
		if err := rows.Scan(&sess.ID, &started, &ended, &sess.TaskCount, &modes, &targets, &sess.Outcome); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sess.StartedAt = time.UnixMilli(started)
		if ended.Valid {
			sess.EndedAt = time.UnixMilli(ended.Int64)
		}
		for _, m := range splitList(modes) {
			sess.Modes = append(sess.Modes, target.Mode(m))
		}
		sess.Targets = splitList(targets)
		out = append(out, sess)
	}
	return out, rows.Err()
}

func (s *Store) queryRuns(ctx context.Context, query string, args ...any) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r       Run
			mode    string
			started int64
		)
		if err := rows.Scan(&r.SessionID, &r.TargetID, &mode, &r.TaskCount, &r.Success, &r.ElapsedMs, &started, &r.Error); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Mode = target.Mode(mode)
		r.StartedAt = time.UnixMilli(started)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func unixMilli(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UnixMilli()
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
