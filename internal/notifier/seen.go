package notifier

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SeenStore records which events have already triggered a notification, so
// an event sitting in the lookahead window across two adjacent poll cycles
// is announced once. Rows older than the retention window are pruned.
type SeenStore struct {
	db *sql.DB
}

// OpenSeenStore opens (or creates) the SQLite database at dbPath and
// ensures the notified_events table exists.
func OpenSeenStore(dbPath string) (*SeenStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS notified_events (
			event_id    TEXT PRIMARY KEY,
			notified_at TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &SeenStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SeenStore) Close() error {
	return s.db.Close()
}

// Notified reports whether a notification for the event was already sent.
func (s *SeenStore) Notified(eventID string) (bool, error) {
	var one int
	err := s.db.QueryRow(`SELECT 1 FROM notified_events WHERE event_id = ?`, eventID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query notified event: %w", err)
	}
	return true, nil
}

// Mark records that the event was notified at the given time.
func (s *SeenStore) Mark(eventID string, at time.Time) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO notified_events (event_id, notified_at) VALUES (?, ?)
	`, eventID, at.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to mark event as notified: %w", err)
	}
	return nil
}

// Prune deletes records older than the cutoff and returns how many went.
func (s *SeenStore) Prune(before time.Time) (int64, error) {
	result, err := s.db.Exec(`
		DELETE FROM notified_events WHERE notified_at < ?
	`, before.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("failed to prune notified events: %w", err)
	}
	n, _ := result.RowsAffected()
	return n, nil
}
