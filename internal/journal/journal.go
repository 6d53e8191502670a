// Package journal persists what svnwatch did: every external tool
// invocation and every commit cycle, in an embedded SQLite database.
// The history and stats commands query it; the dashboard's stats
// poller aggregates from it.
//
// The database runs embedded with WAL mode so the watch loop's writes
// never block a concurrent history query from another process.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// ErrClosed is returned by operations on a closed journal.
var ErrClosed = errors.New("journal closed")

// DB wraps the SQLite connection.
type DB struct {
	conn *sql.DB
	path string
}

// Open opens (creating if needed) the journal database at path and
// prepares the schema. The caller must Close.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping journal: %w", err)
	}

	conn.SetMaxOpenConns(4)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(5 * time.Minute)

	db := &DB{conn: conn, path: path}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	if err := db.InitSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Path returns the database file location.
func (db *DB) Path() string { return db.path }

// Close checkpoints the WAL and closes the connection.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	_, _ = db.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	err := db.conn.Close()
	db.conn = nil
	return err
}

// InitSchema creates the tables and indexes. Idempotent.
func (db *DB) InitSchema() error {
	return db.InitSchemaContext(context.Background())
}

// InitSchemaContext creates the schema with context support.
func (db *DB) InitSchemaContext(ctx context.Context) error {
	if db.conn == nil {
		return ErrClosed
	}
	schema := `
	CREATE TABLE IF NOT EXISTS process_log (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at  TEXT NOT NULL,
		label       TEXT NOT NULL,
		wc_root     TEXT NOT NULL DEFAULT '',
		exit_code   INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		stdout      TEXT NOT NULL DEFAULT '',
		stderr      TEXT NOT NULL DEFAULT '',
		skipped     INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS cycle_log (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at TEXT NOT NULL,
		roots      INTEGER NOT NULL,
		candidates INTEGER NOT NULL,
		committed  INTEGER NOT NULL,
		failed     INTEGER NOT NULL,
		updated    INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_process_started ON process_log(started_at);
	CREATE INDEX IF NOT EXISTS idx_process_root    ON process_log(wc_root);
	CREATE INDEX IF NOT EXISTS idx_process_exit    ON process_log(exit_code);
	CREATE INDEX IF NOT EXISTS idx_cycle_started   ON cycle_log(started_at);
	`
	if _, err := db.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("init journal schema: %w", err)
	}
	return nil
}

// ProcessRecord is one external tool invocation.
type ProcessRecord struct {
	ID         int64     `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	Label      string    `json:"label"`
	Root       string    `json:"wc_root,omitempty"`
	ExitCode   int       `json:"exit_code"`
	DurationMS int64     `json:"duration_ms"`
	Stdout     string    `json:"stdout,omitempty"`
	Stderr     string    `json:"stderr,omitempty"`
	Skipped    bool      `json:"skipped,omitempty"`
}

// CycleRecord summarizes one commit cycle.
type CycleRecord struct {
	ID         int64     `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	Roots      int       `json:"roots"`
	Candidates int       `json:"candidates"`
	Committed  int       `json:"committed"`
	Failed     int       `json:"failed"`
	Updated    bool      `json:"updated"`
}

// RecordProcess appends one invocation row.
func (db *DB) RecordProcess(ctx context.Context, rec ProcessRecord) error {
	if db.conn == nil {
		return ErrClosed
	}
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO process_log (started_at, label, wc_root, exit_code, duration_ms, stdout, stderr, skipped)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.StartedAt.Format(time.RFC3339),
		rec.Label,
		rec.Root,
		rec.ExitCode,
		rec.DurationMS,
		rec.Stdout,
		rec.Stderr,
		boolToInt(rec.Skipped),
	)
	if err != nil {
		return fmt.Errorf("record process: %w", err)
	}
	return nil
}

// RecordCycle appends one cycle row.
func (db *DB) RecordCycle(ctx context.Context, rec CycleRecord) error {
	if db.conn == nil {
		return ErrClosed
	}
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO cycle_log (started_at, roots, candidates, committed, failed, updated)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.StartedAt.Format(time.RFC3339),
		rec.Roots,
		rec.Candidates,
		rec.Committed,
		rec.Failed,
		boolToInt(rec.Updated),
	)
	if err != nil {
		return fmt.Errorf("record cycle: %w", err)
	}
	return nil
}

// Filter narrows history queries. Zero values mean "no constraint".
type Filter struct {
	Since      time.Time
	Root       string
	FailedOnly bool
	Limit      int
}

// Processes returns invocation rows matching f, newest first.
func (db *DB) Processes(ctx context.Context, f Filter) ([]ProcessRecord, error) {
	if db.conn == nil {
		return nil, ErrClosed
	}

	var conditions []string
	var args []any
	if !f.Since.IsZero() {
		conditions = append(conditions, "started_at >= ?")
		args = append(args, f.Since.Format(time.RFC3339))
	}
	if f.Root != "" {
		conditions = append(conditions, "wc_root = ?")
		args = append(args, f.Root)
	}
	if f.FailedOnly {
		conditions = append(conditions, "exit_code != 0 AND skipped = 0")
	}

	query := `SELECT id, started_at, label, wc_root, exit_code, duration_ms, stdout, stderr, skipped FROM process_log`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query processes: %w", err)
	}
	defer rows.Close()

	var out []ProcessRecord
	for rows.Next() {
		var rec ProcessRecord
		var startedAt string
		var skipped int
		if err := rows.Scan(&rec.ID, &startedAt, &rec.Label, &rec.Root,
			&rec.ExitCode, &rec.DurationMS, &rec.Stdout, &rec.Stderr, &skipped); err != nil {
			return nil, fmt.Errorf("scan process row: %w", err)
		}
		rec.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
		rec.Skipped = skipped != 0
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate processes: %w", err)
	}
	return out, nil
}

// Cycles returns cycle rows matching f (Root is ignored), newest first.
func (db *DB) Cycles(ctx context.Context, f Filter) ([]CycleRecord, error) {
	if db.conn == nil {
		return nil, ErrClosed
	}

	var conditions []string
	var args []any
	if !f.Since.IsZero() {
		conditions = append(conditions, "started_at >= ?")
		args = append(args, f.Since.Format(time.RFC3339))
	}
	if f.FailedOnly {
		conditions = append(conditions, "failed > 0")
	}

	query := `SELECT id, started_at, roots, candidates, committed, failed, updated FROM cycle_log`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query cycles: %w", err)
	}
	defer rows.Close()

	var out []CycleRecord
	for rows.Next() {
		var rec CycleRecord
		var startedAt string
		var updated int
		if err := rows.Scan(&rec.ID, &startedAt, &rec.Roots, &rec.Candidates,
			&rec.Committed, &rec.Failed, &updated); err != nil {
			return nil, fmt.Errorf("scan cycle row: %w", err)
		}
		rec.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
		rec.Updated = updated != 0
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cycles: %w", err)
	}
	return out, nil
}

// Stats aggregates journal activity since a cutoff.
type Stats struct {
	Invocations   int     `json:"invocations"`
	Failures      int     `json:"failures"`
	AvgDurationMS float64 `json:"avg_duration_ms"`
	Cycles        int     `json:"cycles"`
	Committed     int     `json:"committed"`
}

// Aggregate computes Stats for rows at or after since. A zero since
// aggregates everything.
func (db *DB) Aggregate(ctx context.Context, since time.Time) (Stats, error) {
	if db.conn == nil {
		return Stats{}, ErrClosed
	}

	cutoff := ""
	if !since.IsZero() {
		cutoff = since.Format(time.RFC3339)
	}

	var stats Stats
	var avg sql.NullFloat64
	err := db.conn.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN exit_code != 0 AND skipped = 0 THEN 1 ELSE 0 END), 0),
		       AVG(duration_ms)
		FROM process_log
		WHERE (? = '' OR started_at >= ?)`, cutoff, cutoff,
	).Scan(&stats.Invocations, &stats.Failures, &avg)
	if err != nil {
		return Stats{}, fmt.Errorf("aggregate processes: %w", err)
	}
	if avg.Valid {
		stats.AvgDurationMS = avg.Float64
	}

	err = db.conn.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(committed), 0)
		FROM cycle_log
		WHERE (? = '' OR started_at >= ?)`, cutoff, cutoff,
	).Scan(&stats.Cycles, &stats.Committed)
	if err != nil {
		return Stats{}, fmt.Errorf("aggregate cycles: %w", err)
	}
	return stats, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
