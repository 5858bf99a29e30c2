// Package source implements one fetch adapter per external job-feed provider.
//
// Every adapter maps its provider's native shape into model.NormalizedListing.
// Adapters are failure-isolated: a timeout, non-2xx response or malformed
// payload yields an empty (or partial) result and a warning log, never an
// error that could abort the aggregate fetch.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"jobdash/alerts-service/internal/model"
)

const (
	httpTimeout    = 10 * time.Second
	maxDescription = 2000
	userAgent      = "jobdash-alerts-service/1.0"
)

// Adapter fetches raw postings from one provider and normalizes them.
type Adapter interface {
	// Key identifies the provider this adapter serves.
	Key() model.SourceKey

	// Fetch retrieves the provider's latest postings. A partial result with a
	// non-nil error is valid: the caller keeps what was fetched and logs the
	// error.
	Fetch(ctx context.Context) ([]model.NormalizedListing, error)
}

// newHTTPClient returns the per-adapter client with the shared timeout.
func newHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// getJSON issues a GET and returns the response body, treating any non-2xx
// status as an error.
func getJSON(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http GET: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return capBytes(s, n) + "…"
}
