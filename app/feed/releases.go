package feed

import (
	"slices"
	"time"
)

// SortReleases orders releases newest first.
func SortReleases(releases []Release) {
	slices.SortStableFunc(releases, func(a, b Release) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
}

// FilterSince drops every release at or before cutoff.
func FilterSince(releases []Release, cutoff time.Time) []Release {
	result := make([]Release, 0, len(releases))
	for _, release := range releases {
		if release.Timestamp.After(cutoff) {
			result = append(result, release)
		}
	}
	return result
}
