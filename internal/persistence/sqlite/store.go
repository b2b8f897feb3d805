package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/timeline-scheduler/internal/persistence"
	"github.com/example/timeline-scheduler/internal/timeline"
	_ "modernc.org/sqlite"
)

// Store persists timeline collections in SQLite. Each collection occupies one
// row holding the full serialized snapshot; saves rewrite the row wholesale,
// matching the engine's no-diffing persistence contract.
type Store struct {
	db *sql.DB
}

// Open connects to the SQLite database identified by dsn.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: connect: %w", err)
	}
	return &Store{db: db}, nil
}

// Migrate creates the collections table when missing.
func (s *Store) Migrate(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS collections (
	name       TEXT PRIMARY KEY,
	payload    BLOB NOT NULL,
	updated_at TEXT NOT NULL
)`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("sqlite: apply schema: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// LoadItems reads one collection snapshot. A collection that has never been
// saved yields an empty result, not an error.
func (s *Store) LoadItems(ctx context.Context, collection string) ([]timeline.Item, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM collections WHERE name = ?`, collection).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: load collection %q: %w", collection, err)
	}

	// Individually malformed records are dropped by the codec; only a snapshot
	// that cannot be parsed at all surfaces as an error.
	items, _, err := persistence.DecodeItems(payload)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// SaveItems replaces one collection snapshot.
func (s *Store) SaveItems(ctx context.Context, collection string, items []timeline.Item) error {
	payload, err := persistence.EncodeItems(items)
	if err != nil {
		return err
	}

	const upsert = `
INSERT INTO collections (name, payload, updated_at) VALUES (?, ?, ?)
ON CONFLICT(name) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`
	if _, err := s.db.ExecContext(ctx, upsert, collection, payload, time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("sqlite: save collection %q: %w", collection, err)
	}
	return nil
}
