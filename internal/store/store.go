package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const currentVersion = 1

type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	// Configure pragmas.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS entries (
		id          TEXT PRIMARY KEY,
		text        TEXT NOT NULL,
		timestamp   TEXT NOT NULL,
		time_label  TEXT NOT NULL,
		created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE INDEX IF NOT EXISTS idx_entries_timestamp ON entries(timestamp);

	CREATE TABLE IF NOT EXISTS session_state (
		id            INTEGER PRIMARY KEY CHECK (id = 1),
		is_active     INTEGER NOT NULL DEFAULT 0,
		start_time    TEXT,
		current_entry TEXT NOT NULL DEFAULT '',
		updated_at    TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	INSERT OR IGNORE INTO settings (key, value) VALUES
		('notifications_enabled', '1'),
		('test_duration',         '5'),
		('capture_limit',         '300');
	`
	_, err := s.db.Exec(ddl)
	return err
}

// ClearAllData wipes entries, session state and settings in one transaction.
// Settings defaults are reseeded so the app keeps working afterwards.
func (s *Store) ClearAllData() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin clear: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM entries`,
		`DELETE FROM session_state`,
		`DELETE FROM settings`,
		`INSERT INTO settings (key, value) VALUES
			('notifications_enabled', '1'),
			('test_duration',         '5'),
			('capture_limit',         '300')`,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("clear data: %w", err)
		}
	}
	return tx.Commit()
}

// DefaultDBPath returns ~/.config/blocktrack/blocktrack.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "blocktrack", "blocktrack.db"), nil
}
