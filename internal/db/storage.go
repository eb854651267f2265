package db

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"reviso/internal/srs"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// Storage wraps the sqlite connection and implements the repository ports.
type Storage struct {
	db     *sql.DB
	policy srs.Policy
}

// ConnectDB opens (or creates) the sqlite database at path. The policy is used
// to rehydrate stored scheduling values.
func ConnectDB(path string, policy srs.Policy) (*Storage, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	// Serialized writes per connection; the aggregate is not internally
	// synchronized.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		return nil, fmt.Errorf("error enabling foreign keys: %w", err)
	}

	return &Storage{db: conn, policy: policy}, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}
