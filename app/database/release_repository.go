package database

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// SQLiteReleaseRepository stores assembled releases so serve mode can answer
// queries without refetching the feed.
type SQLiteReleaseRepository struct {
	db *DB
}

func NewReleaseRepository(db *DB) *SQLiteReleaseRepository {
	return &SQLiteReleaseRepository{db: db}
}

// ContentHash identifies a release by its title and link.
func ContentHash(title, link string) string {
	sum := sha256.Sum256([]byte(title + "|" + link))
	return hex.EncodeToString(sum[:])
}

func (r *SQLiteReleaseRepository) UpsertRelease(release Release) error {
	id := release.ID
	if id == "" {
		id = ContentHash(release.Title, release.Link)
	}
	now := time.Now().UTC().UnixNano()

	_, err := r.db.Exec(`
		INSERT INTO releases (
			id, title, summary, content, link, released_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			summary = excluded.summary,
			content = excluded.content,
			released_at = excluded.released_at,
			updated_at = excluded.updated_at
	`, id, release.Title, release.Summary, release.Content, release.Link,
		release.Timestamp.UTC().UnixNano(), now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert release: %w", err)
	}

	return nil
}

// GetReleases returns releases newest first. A nil since returns all of them;
// otherwise only releases strictly after since are included.
func (r *SQLiteReleaseRepository) GetReleases(since *time.Time, limit int) ([]Release, error) {
	cutoff := int64(-1 << 63)
	if since != nil {
		cutoff = since.UTC().UnixNano()
	}

	rows, err := r.db.Query(`
		SELECT id, title, summary, content, link, released_at, created_at, updated_at
		FROM releases
		WHERE released_at > ?
		ORDER BY released_at DESC
		LIMIT ?
	`, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query releases: %w", err)
	}
	defer rows.Close()

	var releases []Release
	for rows.Next() {
		release, err := scanRelease(rows)
		if err != nil {
			return nil, err
		}
		releases = append(releases, *release)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate releases: %w", err)
	}

	return releases, nil
}

// GetLatestRelease returns nil when the store is empty.
func (r *SQLiteReleaseRepository) GetLatestRelease() (*Release, error) {
	row := r.db.QueryRow(`
		SELECT id, title, summary, content, link, released_at, created_at, updated_at
		FROM releases
		ORDER BY released_at DESC
		LIMIT 1
	`)

	release, err := scanRelease(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return release, nil
}

func (r *SQLiteReleaseRepository) GetReleaseCount() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM releases`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count releases: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRelease(row rowScanner) (*Release, error) {
	var release Release
	var releasedAt, createdAt, updatedAt int64

	err := row.Scan(&release.ID, &release.Title, &release.Summary, &release.Content,
		&release.Link, &releasedAt, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan release: %w", err)
	}

	release.Timestamp = time.Unix(0, releasedAt).UTC()
	release.CreatedAt = time.Unix(0, createdAt).UTC()
	release.UpdatedAt = time.Unix(0, updatedAt).UTC()

	return &release, nil
}

var (
	_ ReleaseRepository = (*SQLiteReleaseRepository)(nil)
	_ StateRepository   = (*SQLiteStateRepository)(nil)
)
