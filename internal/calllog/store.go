package calllog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by Get when no call has the given id.
var ErrNotFound = errors.New("call not found")

const schema = `
CREATE TABLE IF NOT EXISTS tutor_calls (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	call_id       TEXT NOT NULL UNIQUE,
	timestamp     INTEGER NOT NULL,
	kind          TEXT NOT NULL,
	mode          TEXT NOT NULL,
	language      TEXT NOT NULL,
	status        INTEGER NOT NULL DEFAULT 0,
	success       INTEGER NOT NULL DEFAULT 0,
	latency_ms    INTEGER NOT NULL DEFAULT 0,
	error_message TEXT NOT NULL DEFAULT '',
	request_body  TEXT NOT NULL DEFAULT '',
	response_body TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_tutor_calls_timestamp ON tutor_calls(timestamp);
CREATE INDEX IF NOT EXISTS idx_tutor_calls_mode ON tutor_calls(mode);
`

// Store records tutoring calls in a SQLite database.
type Store struct {
	db *sql.DB
}

// Open connects to the SQLite database at dsn, applies pragmas and creates
// the schema if needed.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record appends c. A missing CallID or Timestamp is filled in.
func (s *Store) Record(ctx context.Context, c Call) error {
	if c.CallID == "" {
		c.CallID = uuid.NewString()
	}
	if c.Timestamp.IsZero() {
		c.Timestamp = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tutor_calls (
			call_id, timestamp, kind, mode, language, status, success,
			latency_ms, error_message, request_body, response_body
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.CallID, c.Timestamp.UnixMilli(), string(c.Kind), c.Mode, c.Language,
		c.Status, boolToInt(c.Success), c.LatencyMs, c.ErrorMessage,
		c.RequestBody, c.ResponseBody,
	)
	if err != nil {
		return fmt.Errorf("save tutor call: %w", err)
	}
	return nil
}

const selectColumns = `
	SELECT id, call_id, timestamp, kind, mode, language, status, success,
	       latency_ms, error_message, request_body, response_body
	FROM tutor_calls`

// Recent returns up to limit calls, newest first. A limit of 0 returns all.
func (s *Store) Recent(ctx context.Context, limit int) ([]Call, error) {
	query := selectColumns + ` ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tutor calls: %w", err)
	}
	defer rows.Close()

	var calls []Call
	for rows.Next() {
		c, err := scanCall(rows)
		if err != nil {
			return nil, err
		}
		calls = append(calls, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tutor calls: %w", err)
	}
	return calls, nil
}

// Get returns the call with the given row id.
func (s *Store) Get(ctx context.Context, id int64) (*Call, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	c, err := scanCall(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Stats aggregates calls per mode, ordered by mode.
func (s *Store) Stats(ctx context.Context) ([]ModeStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT mode, COUNT(*), SUM(success), COALESCE(AVG(latency_ms), 0)
		FROM tutor_calls
		GROUP BY mode
		ORDER BY mode`)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	var stats []ModeStats
	for rows.Next() {
		var st ModeStats
		var avg float64
		if err := rows.Scan(&st.Mode, &st.Calls, &st.Succeeded, &avg); err != nil {
			return nil, fmt.Errorf("scan stats row: %w", err)
		}
		st.AvgLatencyMs = int64(avg)
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stats: %w", err)
	}
	return stats, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCall(row scanner) (Call, error) {
	var c Call
	var ts int64
	var kind string
	var success int
	err := row.Scan(
		&c.ID, &c.CallID, &ts, &kind, &c.Mode, &c.Language, &c.Status,
		&success, &c.LatencyMs, &c.ErrorMessage, &c.RequestBody, &c.ResponseBody,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Call{}, err
		}
		return Call{}, fmt.Errorf("scan tutor call: %w", err)
	}
	c.Timestamp = time.UnixMilli(ts)
	c.Kind = Kind(kind)
	c.Success = success != 0
	return c, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// applyPragmas configures SQLite for a single local writer.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultPath resolves the call log file path:
// 1. LINGOBUDDY_CALL_LOG_PATH environment variable
// 2. $XDG_STATE_HOME/lingobuddy/calls.db
// 3. ~/.local/state/lingobuddy/calls.db
func DefaultPath() (string, error) {
	if p := os.Getenv("LINGOBUDDY_CALL_LOG_PATH"); p != "" {
		return p, EnsureDir(p)
	}

	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		stateHome = filepath.Join(home, ".local", "state")
	}

	p := filepath.Join(stateHome, "lingobuddy", "calls.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
