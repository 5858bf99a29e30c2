// Package runner orchestrates one alert-triggered pipeline run: shared
// aggregate fetch, idempotent persistence, per-alert matching and bookkeeping.
package runner

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"jobdash/alerts-service/internal/aggregate"
	"jobdash/alerts-service/internal/match"
	"jobdash/alerts-service/internal/model"
	"jobdash/alerts-service/internal/store"
)

// ErrNoActiveAlerts is returned when a run is requested for a user with no
// active alerts. No partial work is attempted.
var ErrNoActiveAlerts = errors.New("no active alerts")

const previewLimit = 5

// EventNewMatches is published to Redis after a run that saved matches, so
// the dashboard gateway can forward a notification.
const EventNewMatches = "EVENT_NEW_MATCHES"

// Fetcher is the aggregate surface the runner needs.
type Fetcher interface {
	FetchAll(ctx context.Context, sources []model.SourceKey, window time.Duration) []model.NormalizedListing
}

// Runner coordinates the pipeline. rdb may be nil (no event publishing).
type Runner struct {
	fetcher Fetcher
	store   store.Store
	rdb     *redis.Client
}

// New returns a configured Runner.
func New(fetcher Fetcher, st store.Store, rdb *redis.Client) *Runner {
	return &Runner{fetcher: fetcher, store: st, rdb: rdb}
}

// Run executes the pipeline for the user's alerts and returns a summary.
// Idempotent with respect to already-persisted listings and matches: a
// second run over the same provider snapshot inserts nothing new.
//
// A persistence failure on one listing or match is skipped, never fatal;
// only the absence of alerts is rejected up front.
func (r *Runner) Run(ctx context.Context, userID string, alerts []model.Alert) (*model.RunSummary, error) {
	if len(alerts) == 0 {
		return nil, ErrNoActiveAlerts
	}

	sources := sourceUnion(alerts)
	jobs := r.fetcher.FetchAll(ctx, sources, aggregate.DefaultWindow)

	// Upsert every aggregated listing once, before any alert looks at it.
	// listingIDs maps external id → stored row id for the match phase.
	listingIDs := make(map[string]string, len(jobs))
	newListings := 0
	for _, job := range jobs {
		id, inserted, err := r.store.UpsertListing(ctx, job)
		if err != nil {
			slog.Warn("listing upsert skipped", "externalId", job.ExternalID, "err", err)
			continue
		}
		listingIDs[job.ExternalID] = id
		if inserted {
			newListings++
		}
	}

	summary := &model.RunSummary{
		SourcesQueried:  len(sources),
		JobsFetched:     len(jobs),
		NewListings:     newListings,
		AlertsProcessed: len(alerts),
	}

	now := time.Now().UTC()
	for _, alert := range alerts {
		detail := r.processAlert(ctx, jobs, listingIDs, alert)
		summary.MatchesSaved += detail.MatchesSaved
		summary.Alerts = append(summary.Alerts, detail)

		// Stamp last_fetch_at even on zero-match runs so staleness is
		// observable by the caller.
		if err := r.store.TouchLastFetch(ctx, alert.ID, now); err != nil {
			slog.Warn("last_fetch_at update failed", "alertId", alert.ID, "err", err)
		}
	}

	r.publishNewMatches(ctx, userID, summary.MatchesSaved)
	return summary, nil
}

// processAlert filters the shared aggregate down to the alert's sources,
// ranks it against the alert's keywords and upserts a match per survivor.
func (r *Runner) processAlert(ctx context.Context, jobs []model.NormalizedListing, listingIDs map[string]string, alert model.Alert) model.AlertRunDetail {
	relevant := make([]model.NormalizedListing, 0, len(jobs))
	for _, job := range jobs {
		if alert.WantsSource(job.Source) {
			relevant = append(relevant, job)
		}
	}

	ranked := match.Rank(relevant, alert.Keywords, alert.ExcludeKeywords, alert.MaxPerDay)

	saved := 0
	for _, job := range ranked {
		listingID, ok := listingIDs[job.ExternalID]
		if !ok {
			continue // listing upsert failed earlier
		}
		inserted, err := r.store.UpsertMatch(ctx, alert.UserID, listingID, alert.ID)
		if err != nil {
			slog.Warn("match upsert skipped", "alertId", alert.ID, "listingId", listingID, "err", err)
			continue
		}
		if inserted {
			saved++
		}
	}

	preview := make([]model.ListingPreview, 0, previewLimit)
	for _, job := range ranked {
		if len(preview) >= previewLimit {
			break
		}
		preview = append(preview, model.ListingPreview{
			Title:       job.Title,
			Company:     job.Company,
			Source:      job.Source,
			URL:         job.URL,
			PublishedAt: job.PublishedAt,
		})
	}

	return model.AlertRunDetail{
		AlertID:      alert.ID,
		Name:         alert.Name,
		Keywords:     alert.Keywords,
		Sources:      alert.Sources,
		JobsFetched:  len(relevant),
		JobsMatched:  len(ranked),
		MatchesSaved: saved,
		Preview:      preview,
	}
}

// publishNewMatches emits EVENT_NEW_MATCHES (non-fatal) when a run saved
// at least one match.
func (r *Runner) publishNewMatches(ctx context.Context, userID string, saved int) {
	if r.rdb == nil || saved == 0 {
		return
	}
	event, _ := json.Marshal(map[string]any{
		"type":   EventNewMatches,
		"userId": userID,
		"saved":  saved,
	})
	if err := r.rdb.Publish(ctx, EventNewMatches, event).Err(); err != nil {
		slog.Warn("publish EVENT_NEW_MATCHES failed", "err", err)
	}
}

// sourceUnion computes the distinct sources needed across all alerts, in
// enumeration order. One alert with an empty source list widens the union to
// every known source.
func sourceUnion(alerts []model.Alert) []model.SourceKey {
	wanted := make(map[model.SourceKey]bool)
	for _, a := range alerts {
		if len(a.Sources) == 0 {
			return model.AllSources()
		}
		for _, s := range a.Sources {
			wanted[s] = true
		}
	}

	union := make([]model.SourceKey, 0, len(wanted))
	for _, s := range model.AllSources() {
		if wanted[s] {
			union = append(union, s)
		}
	}
	return union
}
