// Package model defines the shared data structures of the alerts service.
package model

import "time"

// NormalizedListing is the canonical job posting shape every source adapter
// must produce. It is what the aggregator, matcher and store all operate on.
//
// ExternalID is the natural key: "<source>:<providerNativeId>". It is stable
// across re-fetches of the same posting and never reused for a different one —
// all deduplication and idempotent persistence hangs off it.
type NormalizedListing struct {
	ExternalID   string    `json:"externalId"`
	Source       SourceKey `json:"source"`
	Title        string    `json:"title"`
	Company      string    `json:"company,omitempty"`
	Description  string    `json:"description,omitempty"`
	URL          string    `json:"url"`
	ContactEmail string    `json:"contactEmail,omitempty"`
	Location     string    `json:"location,omitempty"`
	Salary       string    `json:"salary,omitempty"`
	Tags         []string  `json:"tags,omitempty"`
	PublishedAt  time.Time `json:"publishedAt"`
}

// Alert mirrors the alerts table row relevant to the pipeline. Alerts are
// created and edited by the dashboard CRUD layer; the pipeline reads them and
// only ever writes back LastFetchAt.
type Alert struct {
	ID              string
	UserID          string
	Name            string
	Keywords        []string    // lower-cased, deduped by the CRUD layer
	ExcludeKeywords []string    // any match discards the listing
	Sources         []SourceKey // empty means "all sources"
	MaxPerDay       int         // cap on matches surfaced per run
	IsActive        bool
	LastFetchAt     *time.Time
}

// WantsSource reports whether the alert cares about the given source.
// An alert with no explicit sources wants all of them.
func (a Alert) WantsSource(key SourceKey) bool {
	if len(a.Sources) == 0 {
		return true
	}
	for _, s := range a.Sources {
		if s == key {
			return true
		}
	}
	return false
}

// AlertMatch joins one user to one persisted listing. Uniquely keyed by
// (UserID, JobListingID) — one row per user per listing no matter how many
// alerts or runs would have produced it. AlertID records whichever alert got
// there first.
type AlertMatch struct {
	ID           string      `json:"id"`
	UserID       string      `json:"userId"`
	JobListingID string      `json:"jobListingId"`
	AlertID      string      `json:"alertId"`
	Status       MatchStatus `json:"status"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// ListingPreview is the compact listing shape embedded in run summaries.
type ListingPreview struct {
	Title       string    `json:"title"`
	Company     string    `json:"company,omitempty"`
	Source      SourceKey `json:"source"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"publishedAt"`
}

// AlertRunDetail reports what one alert saw during a run.
type AlertRunDetail struct {
	AlertID      string           `json:"alertId"`
	Name         string           `json:"name"`
	Keywords     []string         `json:"keywords"`
	Sources      []SourceKey      `json:"sources"`
	JobsFetched  int              `json:"jobsFetched"`
	JobsMatched  int              `json:"jobsMatched"`
	MatchesSaved int              `json:"matchesSaved"`
	Preview      []ListingPreview `json:"preview"`
}

// RunSummary is returned to the caller after every run, even an all-zero one.
// Callers must treat zero matches as a normal outcome.
type RunSummary struct {
	SourcesQueried  int              `json:"sourcesQueried"`
	JobsFetched     int              `json:"jobsFetched"`
	NewListings     int              `json:"newListings"`
	AlertsProcessed int              `json:"alertsProcessed"`
	MatchesSaved    int              `json:"matchesSaved"`
	Alerts          []AlertRunDetail `json:"alerts"`
}
