package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// DefaultKeepSnapshots is how many snapshots per failure-type filter survive pruning.
const DefaultKeepSnapshots = 5

// SQLiteStorage keeps snapshots of fetched transaction lists in SQLite so
// the dashboard has something real to show when the backend is down.
type SQLiteStorage struct {
	db            *sql.DB
	now           func() time.Time
	dbPath        string
	keepSnapshots int
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps :memory: databases alive across calls.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		db:            db,
		dbPath:        dbPath,
		now:           time.Now,
		keepSnapshots: DefaultKeepSnapshots,
	}, nil
}

// SetKeepSnapshots changes how many snapshots survive pruning.
func (s *SQLiteStorage) SetKeepSnapshots(n int) {
	if n > 0 {
		s.keepSnapshots = n
	}
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string {
	return s.dbPath
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
