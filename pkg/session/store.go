package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"earthworks/strwriter/pkg/export"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// State holds the values last entered for an export, used to pre-fill the
// next interactive run.
type State struct {
	Layer     string
	Field     string
	TargetCRS string
	DefaultZ  string
	UpdatedAt time.Time
}

// Store persists session state and export history in SQLite. It is safe for
// concurrent use.
type Store struct {
	db        *sql.DB
	path      string
	closeOnce sync.Once

	// prepared statements
	loadStateStmt *sql.Stmt
	saveStateStmt *sql.Stmt
	insertRunStmt *sql.Stmt
	historyStmt   *sql.Stmt
}

// Config configures the store.
type Config struct {
	// Path is the database file, or MemoryPath.
	Path string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// Open opens the store at path with default settings, creating the file and
// its directory if needed.
func Open(path string) (*Store, error) {
	return OpenWithConfig(Config{Path: path})
}

// OpenWithConfig opens the store with custom configuration.
func OpenWithConfig(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("session path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	if cfg.Path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create session directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)",
		cfg.Path, cfg.BusyTimeout.Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports a single writer; one connection also keeps an
	// in-memory database alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{db: db, path: cfg.Path}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if err := s.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	return s, nil
}

// initSchema creates the database schema if it doesn't exist.
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS session_state (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		layer TEXT NOT NULL,
		field TEXT NOT NULL,
		target_crs TEXT NOT NULL,
		default_z TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS export_history (
		run_id TEXT PRIMARY KEY,
		layer TEXT NOT NULL,
		path TEXT NOT NULL,
		trigger TEXT NOT NULL,
		status TEXT NOT NULL,
		target_crs TEXT NOT NULL,
		data_lines INTEGER NOT NULL,
		terminators INTEGER NOT NULL,
		skipped INTEGER NOT NULL,
		error TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		finished_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_history_started ON export_history(started_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// prepareStatements prepares SQL statements for reuse.
func (s *Store) prepareStatements() error {
	var err error

	s.loadStateStmt, err = s.db.Prepare(`
		SELECT layer, field, target_crs, default_z, updated_at
		FROM session_state WHERE id = 1
	`)
	if err != nil {
		return fmt.Errorf("prepare load state: %w", err)
	}

	s.saveStateStmt, err = s.db.Prepare(`
		INSERT INTO session_state (id, layer, field, target_crs, default_z, updated_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			layer = excluded.layer,
			field = excluded.field,
			target_crs = excluded.target_crs,
			default_z = excluded.default_z,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("prepare save state: %w", err)
	}

	s.insertRunStmt, err = s.db.Prepare(`
		INSERT INTO export_history (
			run_id, layer, path, trigger, status, target_crs,
			data_lines, terminators, skipped, error, started_at, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert run: %w", err)
	}

	s.historyStmt, err = s.db.Prepare(`
		SELECT run_id, layer, path, trigger, status, target_crs,
			data_lines, terminators, skipped, error, started_at, finished_at
		FROM export_history
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?
	`)
	if err != nil {
		return fmt.Errorf("prepare history: %w", err)
	}

	return nil
}

// LoadState returns the saved session state. A store that has never saved
// state returns the zero State.
func (s *Store) LoadState(ctx context.Context) (State, error) {
	var st State
	var updated int64

	err := s.loadStateStmt.QueryRowContext(ctx).Scan(&st.Layer, &st.Field, &st.TargetCRS, &st.DefaultZ, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return State{}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("failed to load session state: %w", err)
	}

	st.UpdatedAt = time.Unix(0, updated)
	return st, nil
}

// SaveState replaces the saved session state. A zero UpdatedAt is set to now.
func (s *Store) SaveState(ctx context.Context, st State) error {
	if st.UpdatedAt.IsZero() {
		st.UpdatedAt = time.Now()
	}

	_, err := s.saveStateStmt.ExecContext(ctx, st.Layer, st.Field, st.TargetCRS, st.DefaultZ, st.UpdatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save session state: %w", err)
	}
	return nil
}

// RecordRun appends an export run to the history. It implements
// export.HistoryRecorder.
func (s *Store) RecordRun(ctx context.Context, run export.Run) error {
	if run.RunID == "" {
		return fmt.Errorf("run ID is required")
	}

	_, err := s.insertRunStmt.ExecContext(ctx,
		run.RunID, run.Layer, run.Path, run.Trigger, run.Status, run.TargetCRS,
		run.DataLines, run.Terminators, run.Skipped, run.Error,
		run.StartedAt.UnixNano(), run.FinishedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", run.RunID, err)
	}
	return nil
}

// History returns up to limit runs, newest first.
func (s *Store) History(ctx context.Context, limit int) ([]export.Run, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.historyStmt.QueryContext(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var runs []export.Run
	for rows.Next() {
		var run export.Run
		var started, finished int64
		if err := rows.Scan(
			&run.RunID, &run.Layer, &run.Path, &run.Trigger, &run.Status, &run.TargetCRS,
			&run.DataLines, &run.Terminators, &run.Skipped, &run.Error,
			&started, &finished,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		run.StartedAt = time.Unix(0, started)
		run.FinishedAt = time.Unix(0, finished)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	return runs, nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Path returns the database path.
func (s *Store) Path() string {
	return s.path
}

// Close releases the prepared statements and the database.
func (s *Store) Close() error {
	var err error
	s.closeOnce.Do(func() {
		for _, stmt := range []*sql.Stmt{s.loadStateStmt, s.saveStateStmt, s.insertRunStmt, s.historyStmt} {
			if stmt != nil {
				stmt.Close()
			}
		}
		err = s.db.Close()
	})
	return err
}
