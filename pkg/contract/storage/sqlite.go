package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"veridian-hq/covenant/pkg/contract"
)

// SQLiteConfig contains configuration for the SQLite contract store.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/contracts.db",
		MaxOpenConns: 10,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS contracts (
	module      TEXT NOT NULL,
	symbol      TEXT NOT NULL,
	source_hash TEXT NOT NULL,
	test_hash   TEXT NOT NULL,
	status      TEXT NOT NULL,
	timestamp   TEXT NOT NULL,
	PRIMARY KEY (module, symbol)
);
CREATE INDEX IF NOT EXISTS idx_contracts_module ON contracts(module);
`

// SQLiteStore persists contracts in a SQLite database, one row per symbol.
type SQLiteStore struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStore opens (and initializes) a SQLite-backed contract store.
func NewSQLiteStore(config *SQLiteConfig) (*SQLiteStore, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "contract.storage.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, fmt.Errorf("open contract store: %w", err)
	}
	db.SetMaxOpenConns(config.MaxOpenConns)

	s := &SQLiteStore{db: db, config: config, logger: logger}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite contract store initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
	)
	return s, nil
}

func (s *SQLiteStore) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return fmt.Errorf("enable wal: %w", err)
		}
	}
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", s.config.BusyTimeout.Milliseconds())); err != nil {
		return fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := s.db.Exec(sqliteSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Load reads all contract rows for a module.
func (s *SQLiteStore) Load(ctx context.Context, modulePath string) (contract.Contract, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT symbol, source_hash, test_hash, status, timestamp FROM contracts WHERE module = ?",
		modulePath)
	if err != nil {
		return nil, fmt.Errorf("query contracts: %w", err)
	}
	defer rows.Close()

	c := contract.Contract{}
	for rows.Next() {
		var symbol, sourceHash, testHash, status, ts string
		if err := rows.Scan(&symbol, &sourceHash, &testHash, &status, &ts); err != nil {
			return nil, fmt.Errorf("scan contract row: %w", err)
		}
		stamp, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parse contract timestamp: %w", err)
		}
		c[symbol] = contract.Record{
			SourceHash: sourceHash,
			TestHash:   testHash,
			Status:     contract.Status(status),
			Timestamp:  stamp,
		}
	}
	return c, rows.Err()
}

// Save replaces all contract rows for a module in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, modulePath string, c contract.Contract) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM contracts WHERE module = ?", modulePath); err != nil {
		return fmt.Errorf("clear contracts: %w", err)
	}
	for symbol, rec := range c {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO contracts (module, symbol, source_hash, test_hash, status, timestamp) VALUES (?, ?, ?, ?, ?, ?)",
			modulePath, symbol, rec.SourceHash, rec.TestHash, string(rec.Status),
			rec.Timestamp.Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("insert contract %s.%s: %w", modulePath, symbol, err)
		}
	}
	return tx.Commit()
}

// Close closes the database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
