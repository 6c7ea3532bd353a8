package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lysyi3m/cros-releases/app/database"
	"github.com/lysyi3m/cros-releases/app/tasks"
)

type mockReleaseRepository struct {
	releases  []database.Release
	err       error
	lastSince *time.Time
	lastLimit int
}

func (m *mockReleaseRepository) GetReleases(since *time.Time, limit int) ([]database.Release, error) {
	m.lastSince = since
	m.lastLimit = limit
	if m.err != nil {
		return nil, m.err
	}

	var out []database.Release
	for _, r := range m.releases {
		if since != nil && !r.Timestamp.After(*since) {
			continue
		}
		out = append(out, r)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *mockReleaseRepository) GetLatestRelease() (*database.Release, error) {
	if m.err != nil {
		return nil, m.err
	}
	if len(m.releases) == 0 {
		return nil, nil
	}
	return &m.releases[0], nil
}

func (m *mockReleaseRepository) GetReleaseCount() (int, error) {
	return len(m.releases), nil
}

func (m *mockReleaseRepository) UpsertRelease(release database.Release) error {
	return nil
}

type mockScheduler struct {
	enqueued int
	err      error
}

func (m *mockScheduler) Start() {}
func (m *mockScheduler) Stop()  {}

func (m *mockScheduler) EnqueueTask(task tasks.TaskInterface) error {
	return m.EnqueueRefresh()
}

func (m *mockScheduler) EnqueueRefresh() error {
	if m.err != nil {
		return m.err
	}
	m.enqueued++
	return nil
}

func testReleases() []database.Release {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return []database.Release{
		{ID: "c", Title: "Dev Channel Update", Summary: "dev", Content: "dev\n", Timestamp: base.Add(2 * time.Hour)},
		{ID: "b", Title: "Beta Channel Update", Summary: "beta", Content: "beta\n", Timestamp: base.Add(time.Hour)},
		{ID: "a", Title: "Stable Channel Update", Summary: "stable", Content: "stable\n", Link: "https://example.com/a", Timestamp: base},
	}
}

func serve(t *testing.T, h *Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	NewServer(h).ServeHTTP(w, req)
	return w
}

func TestGetReleases(t *testing.T) {
	repo := &mockReleaseRepository{releases: testReleases()}
	h := NewHandler(repo, &mockScheduler{}, "test")

	w := serve(t, h, http.MethodGet, "/releases")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if repo.lastLimit != defaultReleaseLimit {
		t.Errorf("Expected default limit %d, got %d", defaultReleaseLimit, repo.lastLimit)
	}

	var body struct {
		Releases []releaseResponse `json:"releases"`
		Total    int               `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if body.Total != 3 || len(body.Releases) != 3 {
		t.Fatalf("Expected 3 releases, got %d", body.Total)
	}
	if body.Releases[0].Title != "Dev Channel Update" {
		t.Errorf("Expected newest first, got %q", body.Releases[0].Title)
	}
}

func TestGetReleases_SinceAndLimit(t *testing.T) {
	repo := &mockReleaseRepository{releases: testReleases()}
	h := NewHandler(repo, &mockScheduler{}, "test")

	w := serve(t, h, http.MethodGet, "/releases?since=2024-05-01T12:30:00Z&limit=500")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if repo.lastLimit != maxReleaseLimit {
		t.Errorf("Expected limit clamped to %d, got %d", maxReleaseLimit, repo.lastLimit)
	}
	if repo.lastSince == nil || !repo.lastSince.Equal(time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)) {
		t.Errorf("Unexpected since: %v", repo.lastSince)
	}
	if strings.Contains(w.Body.String(), "Stable Channel Update") {
		t.Error("Expected releases at or before since to be excluded")
	}
}

func TestGetReleases_BadParams(t *testing.T) {
	h := NewHandler(&mockReleaseRepository{}, &mockScheduler{}, "test")

	for _, target := range []string{"/releases?limit=0", "/releases?limit=abc", "/releases?since=yesterday"} {
		if w := serve(t, h, http.MethodGet, target); w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", target, w.Code)
		}
	}
}

func TestGetReleases_DatabaseError(t *testing.T) {
	h := NewHandler(&mockReleaseRepository{err: errors.New("locked")}, &mockScheduler{}, "test")

	if w := serve(t, h, http.MethodGet, "/releases"); w.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", w.Code)
	}
}

func TestGetLatestRelease(t *testing.T) {
	h := NewHandler(&mockReleaseRepository{}, &mockScheduler{}, "test")
	if w := serve(t, h, http.MethodGet, "/releases/latest"); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 on empty store, got %d", w.Code)
	}

	h = NewHandler(&mockReleaseRepository{releases: testReleases()}, &mockScheduler{}, "test")
	w := serve(t, h, http.MethodGet, "/releases/latest")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var got releaseResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if got.ID != "c" || got.Summary != "dev" {
		t.Errorf("Unexpected latest release: %+v", got)
	}
}

func TestGetFeed(t *testing.T) {
	h := NewHandler(&mockReleaseRepository{releases: testReleases()}, &mockScheduler{}, "test")

	w := serve(t, h, http.MethodGet, "/feed.xml")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/xml") {
		t.Errorf("Unexpected Content-Type: %q", ct)
	}
	if got := w.Header().Get("X-Feed-Items"); got != "3" {
		t.Errorf("Expected X-Feed-Items 3, got %q", got)
	}
	if strings.Count(w.Body.String(), "<item>") != 3 {
		t.Errorf("Expected 3 items in feed:\n%s", w.Body.String())
	}
}

func TestPostRefresh(t *testing.T) {
	scheduler := &mockScheduler{}
	h := NewHandler(&mockReleaseRepository{}, scheduler, "test")

	if w := serve(t, h, http.MethodPost, "/refresh"); w.Code != http.StatusAccepted {
		t.Errorf("Expected 202, got %d", w.Code)
	}
	if scheduler.enqueued != 1 {
		t.Errorf("Expected 1 enqueued refresh, got %d", scheduler.enqueued)
	}

	scheduler.err = tasks.ErrQueueFull
	if w := serve(t, h, http.MethodPost, "/refresh"); w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 when queue is full, got %d", w.Code)
	}
}

func TestHealthAndRoot(t *testing.T) {
	h := NewHandler(&mockReleaseRepository{releases: testReleases()}, &mockScheduler{}, "1.2.3")

	w := serve(t, h, http.MethodGet, "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var health map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &health); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if health["releases"] != float64(3) {
		t.Errorf("Expected releases 3, got %v", health["releases"])
	}

	w = serve(t, h, http.MethodGet, "/")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"version":"1.2.3"`) {
		t.Errorf("Unexpected root response: %d %s", w.Code, w.Body.String())
	}

	w = serve(t, h, http.MethodOptions, "/releases")
	if w.Code != http.StatusNoContent {
		t.Errorf("Expected 204 for OPTIONS, got %d", w.Code)
	}
}
