package api

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/cros-releases/app/database"
	"github.com/lysyi3m/cros-releases/app/feed"
	"github.com/lysyi3m/cros-releases/app/output"
	"github.com/lysyi3m/cros-releases/app/tasks"
)

func NewHandler(releaseRepo database.ReleaseRepository, scheduler tasks.TaskSchedulerInterface, version string) *Handler {
	return &Handler{
		releaseRepo: releaseRepo,
		scheduler:   scheduler,
		version:     version,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if count, err := h.releaseRepo.GetReleaseCount(); err == nil {
		health["releases"] = count
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetReleases(c *gin.Context) {
	limit := defaultReleaseLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxReleaseLimit)
	}

	var since *time.Time
	if raw := c.Query("since"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "since must be an RFC3339 timestamp"})
			return
		}
		since = &ts
	}

	releases, err := h.releaseRepo.GetReleases(since, limit)
	if err != nil {
		slog.Error("Database error", "operation", "get_releases", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	response := make([]releaseResponse, 0, len(releases))
	for _, r := range releases {
		response = append(response, newReleaseResponse(r))
	}

	c.JSON(http.StatusOK, gin.H{
		"releases": response,
		"total":    len(response),
	})
}

func (h *Handler) GetLatestRelease(c *gin.Context) {
	release, err := h.releaseRepo.GetLatestRelease()
	if err != nil {
		slog.Error("Database error", "operation", "get_latest_release", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if release == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No releases stored yet"})
		return
	}

	c.JSON(http.StatusOK, newReleaseResponse(*release))
}

func (h *Handler) GetFeed(c *gin.Context) {
	releases, err := h.releaseRepo.GetReleases(nil, maxReleaseLimit)
	if err != nil {
		slog.Error("Database error", "operation", "get_releases", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	items := make([]feed.Release, 0, len(releases))
	for _, r := range releases {
		items = append(items, toFeedRelease(r))
	}

	var buf bytes.Buffer
	if err := output.NewWriter(&buf, nil).Run(items, output.FormatRSS); err != nil {
		slog.Error("RSS generation error", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("X-Feed-Items", strconv.Itoa(len(items)))
	c.Data(http.StatusOK, "application/xml; charset=utf-8", buf.Bytes())
}

func (h *Handler) PostRefresh(c *gin.Context) {
	err := h.scheduler.EnqueueRefresh()
	if errors.Is(err, tasks.ErrQueueFull) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Refresh queue is full"})
		return
	}
	if err != nil {
		slog.Error("Failed to enqueue refresh", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Scheduler unavailable"})
		return
	}

	slog.Info("Refresh enqueued via API")
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}
