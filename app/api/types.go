package api

import (
	"time"

	"github.com/lysyi3m/cros-releases/app/database"
	"github.com/lysyi3m/cros-releases/app/feed"
	"github.com/lysyi3m/cros-releases/app/tasks"
)

const (
	defaultReleaseLimit = 25
	maxReleaseLimit     = 100
)

type Handler struct {
	releaseRepo database.ReleaseRepository
	scheduler   tasks.TaskSchedulerInterface
	version     string
}

type releaseResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	Content   string    `json:"content"`
	Link      string    `json:"link,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func newReleaseResponse(r database.Release) releaseResponse {
	return releaseResponse{
		ID:        r.ID,
		Title:     r.Title,
		Summary:   r.Summary,
		Content:   r.Content,
		Link:      r.Link,
		Timestamp: r.Timestamp,
	}
}

func toFeedRelease(r database.Release) feed.Release {
	return feed.Release{
		Title:     r.Title,
		Summary:   r.Summary,
		Content:   r.Content,
		Timestamp: r.Timestamp,
		Link:      r.Link,
	}
}
