// Package aggregate fans out over the source adapters and merges their
// output into one bounded, fresh, deduplicated listing set.
package aggregate

import (
	"context"
	"log"
	"sort"
	"time"

	"jobdash/alerts-service/internal/model"
	"jobdash/alerts-service/internal/source"
)

const (
	// DefaultWindow is the freshness window for alert-triggered runs.
	DefaultWindow = 24 * time.Hour

	// DefaultPerSourceCap bounds how many listings one provider may
	// contribute to the merged output. Keeps the aggregate at most
	// |sources| × cap regardless of how noisy any one provider is.
	DefaultPerSourceCap = 2
)

// Aggregator owns the adapter registry and the merge pipeline.
type Aggregator struct {
	adapters     map[model.SourceKey]source.Adapter
	perSourceCap int
}

// New builds an Aggregator over the given adapters with the default cap.
func New(adapters []source.Adapter) *Aggregator {
	byKey := make(map[model.SourceKey]source.Adapter, len(adapters))
	for _, a := range adapters {
		byKey[a.Key()] = a
	}
	return &Aggregator{adapters: byKey, perSourceCap: DefaultPerSourceCap}
}

// sourceResult carries one adapter's settled outcome across the fan-in
// channel. err is informational only — a failed adapter contributes
// whatever partial listings it returned.
type sourceResult struct {
	key      model.SourceKey
	listings []model.NormalizedListing
	err      error
}

// FetchAll runs the requested adapters concurrently, waits for all of them to
// settle, then per source: drops listings older than window, sorts the rest
// newest-first and keeps at most the per-source cap. The capped per-source
// lists are merged and deduplicated by external id (first occurrence wins).
//
// A window of 0 disables the freshness filter. Unknown source keys are
// ignored with a warning; adapter failures never abort the call.
func (g *Aggregator) FetchAll(ctx context.Context, sources []model.SourceKey, window time.Duration) []model.NormalizedListing {
	results := make(chan sourceResult, len(sources))
	launched := 0

	for _, key := range sources {
		adapter, ok := g.adapters[key]
		if !ok {
			log.Printf("[aggregate] no adapter registered for source %q — skipping", key)
			continue
		}
		launched++
		go func(key model.SourceKey, adapter source.Adapter) {
			listings, err := adapter.Fetch(ctx)
			results <- sourceResult{key: key, listings: listings, err: err}
		}(key, adapter)
	}

	now := time.Now()
	var merged []model.NormalizedListing
	seen := make(map[string]bool)

	for i := 0; i < launched; i++ {
		res := <-results
		if res.err != nil {
			log.Printf("[aggregate] source %s failed: %v (keeping %d partial)", res.key, res.err, len(res.listings))
		}

		fresh := filterFresh(res.listings, now, window)
		capped := capNewest(fresh, g.perSourceCap)

		log.Printf("[aggregate] source %s: fetched=%d fresh=%d kept=%d",
			res.key, len(res.listings), len(fresh), len(capped))

		for _, l := range capped {
			if seen[l.ExternalID] {
				continue
			}
			seen[l.ExternalID] = true
			merged = append(merged, l)
		}
	}

	log.Printf("[aggregate] merged %d listing(s) from %d source(s)", len(merged), launched)
	return merged
}

// filterFresh keeps listings whose publishedAt falls inside the window.
// Listings without a usable timestamp are dropped — freshness cannot be
// established for them.
func filterFresh(listings []model.NormalizedListing, now time.Time, window time.Duration) []model.NormalizedListing {
	if window <= 0 {
		return listings
	}
	cutoff := now.Add(-window)
	fresh := make([]model.NormalizedListing, 0, len(listings))
	for _, l := range listings {
		if l.PublishedAt.IsZero() || l.PublishedAt.Before(cutoff) {
			continue
		}
		fresh = append(fresh, l)
	}
	return fresh
}

// capNewest sorts newest-first and keeps at most n entries.
func capNewest(listings []model.NormalizedListing, n int) []model.NormalizedListing {
	sort.SliceStable(listings, func(i, j int) bool {
		return listings[i].PublishedAt.After(listings[j].PublishedAt)
	})
	if len(listings) > n {
		return listings[:n]
	}
	return listings
}
