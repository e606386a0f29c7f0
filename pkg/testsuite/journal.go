package testsuite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// Journal records every test-suite execution in a SQLite database so trust
// decisions can be audited after the fact.
type Journal struct {
	db *sql.DB
}

const journalSchema = `
CREATE TABLE IF NOT EXISTS test_runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	module      TEXT NOT NULL,
	target      TEXT NOT NULL,
	passed      INTEGER NOT NULL,
	expected    TEXT NOT NULL,
	actual      TEXT NOT NULL,
	duration_ms INTEGER NOT NULL,
	recorded_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_test_runs_module ON test_runs(module, recorded_at);
`

// OpenJournal opens (and initializes) the journal database, creating the
// parent directory when needed.
func OpenJournal(path string) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create journal directory: %w", err)
		}
	}
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open test journal: %w", err)
	}
	// SQLite only supports a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(journalSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize test journal: %w", err)
	}
	return &Journal{db: db}, nil
}

// Record stores every result of a suite run.
func (j *Journal) Record(ctx context.Context, report *Report) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("journal begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, res := range report.Results {
		passed := 0
		if res.Passed {
			passed = 1
		}
		_, err := tx.ExecContext(ctx,
			"INSERT INTO test_runs (module, target, passed, expected, actual, duration_ms, recorded_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
			report.Module, res.Target, passed, res.Expected, res.Actual,
			res.Elapsed.Milliseconds(), now)
		if err != nil {
			return fmt.Errorf("journal insert: %w", err)
		}
	}
	return tx.Commit()
}

// Close closes the journal database.
func (j *Journal) Close() error { return j.db.Close() }
