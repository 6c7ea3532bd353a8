package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const lastReleaseKey = "last_release"

// SQLiteStateRepository keeps small key/value markers such as the timestamp
// of the newest release already reported in diff mode.
type SQLiteStateRepository struct {
	db *DB
}

func NewStateRepository(db *DB) *SQLiteStateRepository {
	return &SQLiteStateRepository{db: db}
}

// GetLastRelease returns nil when no release has been recorded yet.
func (r *SQLiteStateRepository) GetLastRelease() (*time.Time, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM state WHERE key = ?`, lastReleaseKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last release: %w", err)
	}

	ts, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return nil, fmt.Errorf("failed to parse last release %q: %w", value, err)
	}

	return &ts, nil
}

func (r *SQLiteStateRepository) SetLastRelease(timestamp time.Time) error {
	_, err := r.db.Exec(`
		INSERT INTO state (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, lastReleaseKey, timestamp.Format(time.RFC3339Nano), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to set last release: %w", err)
	}

	return nil
}
