// Package store persists listings and alert matches behind natural-key
// upserts. The uniqueness constraints (external_id for listings,
// (user_id, job_listing_id) for matches) are the concurrency-control
// mechanism: concurrent or repeated runs are safe without locking.
package store

import (
	"context"
	"errors"
	"time"

	"jobdash/alerts-service/internal/model"
)

// ErrNotFound is returned when a row is missing or not owned by the user.
var ErrNotFound = errors.New("not found")

// ValidationError marks client-correctable input problems (HTTP 400).
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Store is the persistence surface the pipeline depends on. The pgx
// implementation lives in this package; tests substitute fakes.
type Store interface {
	// UpsertListing inserts the listing keyed by its external id. If a row
	// with that key already exists the stored content stays authoritative;
	// inserted is false and the existing row's id is returned.
	UpsertListing(ctx context.Context, l model.NormalizedListing) (id string, inserted bool, err error)

	// UpsertMatch inserts a match row keyed by (userID, listingID).
	// Returns false when the row already exists.
	UpsertMatch(ctx context.Context, userID, listingID, alertID string) (inserted bool, err error)

	// ActiveAlerts returns the user's active alerts.
	ActiveAlerts(ctx context.Context, userID string) ([]model.Alert, error)

	// TouchLastFetch stamps the alert's last_fetch_at.
	TouchLastFetch(ctx context.Context, alertID string, at time.Time) error
}
