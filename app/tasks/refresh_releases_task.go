package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/cros-releases/app/database"
	"github.com/lysyi3m/cros-releases/app/feed"
)

// RefreshReleasesTask fetches the release feed and stores every assembled
// release so the API can serve it.
type RefreshReleasesTask struct {
	Task
	feedURL     string
	fetcher     *feed.Fetcher
	parser      *feed.Parser
	assembler   *feed.Assembler
	options     feed.Options
	releaseRepo database.ReleaseRepository
}

func NewRefreshReleasesTask(feedURL string, fetcher *feed.Fetcher, parser *feed.Parser,
	assembler *feed.Assembler, options feed.Options, releaseRepo database.ReleaseRepository) *RefreshReleasesTask {
	return &RefreshReleasesTask{
		Task:        NewTask(TaskTypeRefreshReleases),
		feedURL:     feedURL,
		fetcher:     fetcher,
		parser:      parser,
		assembler:   assembler,
		options:     options,
		releaseRepo: releaseRepo,
	}
}

func (t *RefreshReleasesTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	data, err := t.fetcher.Run(ctx, t.feedURL)
	if err != nil {
		return fmt.Errorf("failed to fetch feed: %w", err)
	}

	entries, err := t.parser.Run(data)
	if err != nil {
		return fmt.Errorf("failed to parse feed: %w", err)
	}

	releases, err := t.assembler.Run(entries, t.options)
	if err != nil {
		return fmt.Errorf("failed to assemble releases: %w", err)
	}

	for _, release := range releases {
		err := t.releaseRepo.UpsertRelease(database.Release{
			ID:        database.ContentHash(release.Title, release.Link),
			Title:     release.Title,
			Summary:   release.Summary,
			Content:   release.Content,
			Link:      release.Link,
			Timestamp: release.Timestamp,
		})
		if err != nil {
			return fmt.Errorf("failed to store release %q: %w", release.Title, err)
		}
	}

	slog.Info("Task completed",
		"type", string(t.Type),
		"entries", len(entries),
		"releases", len(releases),
		"duration", t.GetDuration().String())

	return nil
}
