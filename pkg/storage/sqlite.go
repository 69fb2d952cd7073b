package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mattsolo1/grove-writer/pkg/models"
)

// SQLiteSlots stores slots in a single sqlite table.
type SQLiteSlots struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the slot database in dataDir.
func OpenSQLite(dataDir string) (*SQLiteSlots, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, "state.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &SQLiteSlots{db: db}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize slots: %w", err)
	}

	return s, nil
}

// init creates the database schema
func (s *SQLiteSlots) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS slots (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Get returns the blob stored under key, or ErrSlotEmpty.
func (s *SQLiteSlots) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, "SELECT value FROM slots WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("read slot %s: %w", key, err)
	}
	return value, nil
}

// Set replaces the blob stored under key.
func (s *SQLiteSlots) Set(ctx context.Context, key string, value []byte) error {
	query := `
	INSERT OR REPLACE INTO slots (key, value, updated_at)
	VALUES (?, ?, ?)
	`

	if _, err := s.db.ExecContext(ctx, query, key, value, time.Now()); err != nil {
		return fmt.Errorf("write slot %s: %v: %w", key, err, models.ErrPersistenceUnavailable)
	}
	return nil
}

// Delete removes key. Deleting an empty slot is not an error.
func (s *SQLiteSlots) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM slots WHERE key = ?", key); err != nil {
		return fmt.Errorf("delete slot %s: %v: %w", key, err, models.ErrPersistenceUnavailable)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteSlots) Close() error {
	return s.db.Close()
}
