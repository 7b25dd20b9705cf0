package store

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is written to PRAGMA user_version. Open refuses histories
// written by a newer qprog.
const schemaVersion = 1

// connParams are go-sqlite3 DSN options applied to every connection:
// WAL journal, NORMAL sync, 5s busy timeout. In-memory databases ignore
// the journal mode.
const connParams = "_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"

// Store is the execution history database.
type Store struct {
	db *sql.DB
}

// Open creates or opens the history at path. ":memory:" gives a private
// in-memory history. Opening an existing history is idempotent.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?"+connParams)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: a single writer, and an in-memory history must not
	// be split across connections.
	db.SetMaxOpenConns(1)

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func initSchema(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if version > schemaVersion {
		return fmt.Errorf("history schema v%d is newer than supported v%d", version, schemaVersion)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}
