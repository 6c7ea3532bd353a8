package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	maxFetchAttempts  = 3
	initialRetryDelay = time.Second
	maxRetryDelay     = 10 * time.Second
)

// BuildFeedURL adds the Blogger paging parameters to the feed endpoint.
func BuildFeedURL(base string, start, maxResults uint) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("failed to parse feed URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("feed URL must be absolute: %s", base)
	}

	q := u.Query()
	q.Set("start-index", strconv.FormatUint(uint64(start), 10))
	q.Set("max-results", strconv.FormatUint(uint64(maxResults), 10))
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// HTTPError is returned for non-200 responses.
type HTTPError struct {
	StatusCode int
	Status     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error: %d %s", e.StatusCode, e.Status)
}

type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
	retryDelay time.Duration
}

func NewFetcher(httpClient *http.Client, userAgent string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		httpClient: httpClient,
		userAgent:  userAgent,
		timeout:    timeout,
		retryDelay: initialRetryDelay,
	}
}

// Run downloads the feed, retrying transient failures with exponential backoff.
func (f *Fetcher) Run(ctx context.Context, feedURL string) ([]byte, error) {
	delay := f.retryDelay
	var lastErr error

	for attempt := 1; attempt <= maxFetchAttempts; attempt++ {
		data, err := f.fetch(ctx, feedURL)
		if err == nil {
			if attempt > 1 {
				slog.Info("Feed fetch succeeded after retry", "attempt", attempt)
			}
			return data, nil
		}
		lastErr = err

		if !isRetryable(err) || attempt == maxFetchAttempts {
			break
		}

		slog.Warn("Feed fetch failed, retrying",
			"attempt", attempt,
			"max_attempts", maxFetchAttempts,
			"delay", delay,
			"error", err)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("retry aborted: %w", ctx.Err())
		}

		delay = min(delay*2, maxRetryDelay)
	}

	return nil, fmt.Errorf("failed to fetch feed: %w", lastErr)
}

func (f *Fetcher) fetch(ctx context.Context, feedURL string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode >= 500 || httpErr.StatusCode == http.StatusTooManyRequests
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
