package store

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// ErrJournalTooNew is returned by Open when the journal was written by a
// build with a later schema.
var ErrJournalTooNew = errors.New("store: journal schema is newer than this build")

// journalMigrations upgrade the outcomes table in order. Entry i moves a
// journal from user_version i to i+1. Append only.
var journalMigrations = []struct {
	name string
	stmt string
}{
	// Two processes sharing a journal must not interleave numbering silently.
	{"unique outcome seq", `CREATE UNIQUE INDEX IF NOT EXISTS idx_outcomes_seq ON outcomes(seq)`},
}

// journalPragmas are applied on every Open. busy_timeout lets a second
// process wait out a writer instead of failing immediately.
var journalPragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA busy_timeout = 5000",
}

// Store is the outcome journal.
type Store struct {
	db *sql.DB
}

// Open opens the outcome journal at path, creating it if needed and
// bringing its schema up to date. Use ":memory:" for a throwaway journal.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	// One connection: SQLite has a single writer, and an in-memory journal
	// lives only as long as its connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.prepare(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	return s, nil
}

func (s *Store) prepare() error {
	if err := s.db.Ping(); err != nil {
		return err
	}
	for _, p := range journalPragmas {
		if _, err := s.db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("create outcomes table: %w", err)
	}
	return s.migrate()
}

// migrate applies each pending journal migration in its own transaction,
// stamping user_version alongside it so a crash never leaves a step
// half-recorded.
func (s *Store) migrate() error {
	version, err := s.schemaVersion()
	if err != nil {
		return err
	}
	if version > len(journalMigrations) {
		return fmt.Errorf("%w: version %d, supported %d", ErrJournalTooNew, version, len(journalMigrations))
	}
	for i := version; i < len(journalMigrations); i++ {
		m := journalMigrations[i]
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(m.stmt); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", i+1, m.name, err)
		}
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): stamp version: %w", i+1, m.name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d (%s): %w", i+1, m.name, err)
		}
	}
	return nil
}

func (s *Store) schemaVersion() (int, error) {
	var v int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("read user_version: %w", err)
	}
	return v, nil
}

// Close closes the journal. Safe to call more than once.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// pragma reads a pragma value as text.
func (s *Store) pragma(name string) (string, error) {
	var value string
	if err := s.db.QueryRow("PRAGMA " + name).Scan(&value); err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return value, nil
}
