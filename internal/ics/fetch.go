package ics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	appLog "churchcal/internal/log"
	"churchcal/internal/metrics"
)

const (
	defaultFetchTimeout = 15 * time.Second
	defaultMaxBodyBytes = 10 << 20
)

// ErrFetchStatus is returned (wrapped) when the feed answers with a non-2xx
// status.
var ErrFetchStatus = errors.New("failed to fetch calendar")

// Fetcher downloads a single ICS feed. Every call goes to the network; there
// is no cache and no retry.
type Fetcher struct {
	client   *http.Client
	url      string
	maxBytes int64
}

// FetcherOptions configures NewFetcher. Zero values pick defaults.
type FetcherOptions struct {
	Timeout      time.Duration
	MaxBodyBytes int64
	// Client overrides the HTTP client (Timeout is then ignored).
	Client *http.Client
}

// NewFetcher creates a Fetcher for url.
func NewFetcher(url string, opts FetcherOptions) *Fetcher {
	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultFetchTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	maxBytes := opts.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBodyBytes
	}
	return &Fetcher{client: client, url: url, maxBytes: maxBytes}
}

// Fetch GETs the feed and returns its body.
func (f *Fetcher) Fetch(ctx context.Context) ([]byte, error) {
	if f.url == "" {
		return nil, errors.New("calendar URL is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/calendar")

	started := time.Now()
	appLog.Debug("ics fetch start", "url", redactURL(f.url))

	resp, err := f.client.Do(req)
	if err != nil {
		metrics.RecordFetch(metrics.FetchError, time.Since(started))
		return nil, fmt.Errorf("fetch calendar: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.RecordFetch(metrics.FetchStatus, time.Since(started))
		return nil, fmt.Errorf("%w: %d", ErrFetchStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		metrics.RecordFetch(metrics.FetchError, time.Since(started))
		return nil, fmt.Errorf("read calendar: %w", err)
	}
	if int64(len(body)) > f.maxBytes {
		metrics.RecordFetch(metrics.FetchError, time.Since(started))
		return nil, fmt.Errorf("read calendar: body exceeds %d bytes", f.maxBytes)
	}

	metrics.RecordFetch(metrics.FetchOK, time.Since(started))
	appLog.Info("ics fetch success", "url", redactURL(f.url), "status", resp.StatusCode, "bytes", len(body))
	return body, nil
}

// redactURL keeps only scheme and host of a feed URL for logs. Public
// calendar URLs carry the calendar ID in the path, and userinfo is dropped.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "ics://...(redacted)"
	}
	return u.Scheme + "://" + u.Host + "/...(redacted)"
}
