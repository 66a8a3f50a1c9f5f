package ics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// DefaultMaxBytes caps how much of a feed body is read.
const DefaultMaxBytes = 5 << 20

// ErrTooLarge is returned when a feed body exceeds the fetcher's limit.
var ErrTooLarge = errors.New("feed body exceeds size limit")

type cacheEntry struct {
	etag         string
	lastModified string
	body         []byte
}

// Fetcher downloads iCalendar feeds, revalidating with ETag and
// Last-Modified so unchanged feeds are not re-downloaded.
type Fetcher struct {
	client   *http.Client
	maxBytes int64

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// NewFetcher creates a Fetcher whose requests give up after timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Fetcher{
		client:   &http.Client{Timeout: timeout},
		maxBytes: DefaultMaxBytes,
		cache:    make(map[string]cacheEntry),
	}
}

// Fetch returns the body of the feed at rawURL. A 304 answer returns the
// body cached from the last 200.
// PRE: rawURL is an absolute http(s) URL
// POST: non-2xx answers (other than a cached 304) are errors; no retry
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/calendar, */*;q=0.5")
	req.Header.Set("User-Agent", "clubdash-feed/1")

	f.mu.Lock()
	cached, hasCache := f.cache[rawURL]
	f.mu.Unlock()
	if hasCache {
		if cached.etag != "" {
			req.Header.Set("If-None-Match", cached.etag)
		}
		if cached.lastModified != "" {
			req.Header.Set("If-Modified-Since", cached.lastModified)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotModified && hasCache:
		slog.Debug("feed_not_modified", "url", RedactURL(rawURL))
		return cached.body, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("fetch %s: %s", RedactURL(rawURL), resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > f.maxBytes {
		return nil, ErrTooLarge
	}

	entry := cacheEntry{
		etag:         resp.Header.Get("ETag"),
		lastModified: resp.Header.Get("Last-Modified"),
		body:         body,
	}
	f.mu.Lock()
	if entry.etag != "" || entry.lastModified != "" {
		f.cache[rawURL] = entry
	} else {
		delete(f.cache, rawURL)
	}
	f.mu.Unlock()

	return body, nil
}

// RedactURL keeps scheme and host only; feed URLs often embed private tokens.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "ics://...(redacted)"
	}
	return u.Scheme + "://" + u.Host + "/...(redacted)"
}
