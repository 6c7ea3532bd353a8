package database

import (
	"time"
)

type StateRepository interface {
	GetLastRelease() (*time.Time, error)
	SetLastRelease(timestamp time.Time) error
}

type ReleaseRepository interface {
	GetReleases(since *time.Time, limit int) ([]Release, error)
	GetLatestRelease() (*Release, error)
	GetReleaseCount() (int, error)

	UpsertRelease(release Release) error
}
