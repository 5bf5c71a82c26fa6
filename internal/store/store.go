// Package store implements the record store backing the dashboard: flat
// document collections on sqlite with ordered listing, partial patches, and
// change notifications for subscribed views.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/missionctl/missionctl/internal/bus"
)

// ErrNotFound is returned when the target record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrInvalid is returned when a field value is not in its allowed set.
var ErrInvalid = errors.New("invalid value")

// Store owns the sqlite database for all collections.
type Store struct {
	db      *sql.DB
	changes *bus.ChangeBus
}

// Open opens (or creates) the store at dbPath. Changes may be nil when no
// push subscribers exist (CLI one-shot commands).
func Open(dbPath string, changes *bus.ChangeBus) (*Store, error) {
	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open store db: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	// Best-effort migrations for existing dbs (no-op if column exists).
	_, _ = db.Exec(`ALTER TABLE contents ADD COLUMN published_url TEXT NOT NULL DEFAULT ''`)
	_, _ = db.Exec(`ALTER TABLE contents ADD COLUMN discord_message_url TEXT NOT NULL DEFAULT ''`)
	_, _ = db.Exec(`ALTER TABLE contents ADD COLUMN discord_message_id TEXT NOT NULL DEFAULT ''`)
	_, _ = db.Exec(`ALTER TABLE team_members ADD COLUMN owns_keywords TEXT NOT NULL DEFAULT ''`)

	return &Store{db: db, changes: changes}, nil
}

// DB exposes the underlying handle for components that share the database.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) emit(collection, id, op string) {
	if s.changes == nil {
		return
	}
	s.changes.Publish(bus.Change{Collection: collection, ID: id, Op: op})
}

func newID() string { return uuid.NewString() }

func nowMs() int64 { return time.Now().UnixMilli() }

func oneOf(val string, allowed ...string) error {
	for _, a := range allowed {
		if val == a {
			return nil
		}
	}
	return fmt.Errorf("%w: %q not in %v", ErrInvalid, val, allowed)
}
