// Package search serves ad-hoc job searches: explicit keywords against a
// live aggregate fetch, with a short-TTL cache in front of the providers.
// Results are never persisted — that is the alert runner's job.
package search

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"jobdash/alerts-service/internal/match"
	"jobdash/alerts-service/internal/model"
	"jobdash/alerts-service/internal/store"
)

// DefaultFreshness is the ad-hoc default; alert runs use the tighter 24h
// window in the aggregate package.
const DefaultFreshness = model.Freshness7d

const defaultMaxResults = 20

// Fetcher is the aggregate surface the search service needs.
type Fetcher interface {
	FetchAll(ctx context.Context, sources []model.SourceKey, window time.Duration) []model.NormalizedListing
}

// Params is one ad-hoc search request, as received from the HTTP edge.
type Params struct {
	Keywords        []string
	ExcludeKeywords []string
	Sources         []string // raw keys; empty = all
	Freshness       string   // raw preset; empty = DefaultFreshness
}

// Result echoes the effective query alongside the ranked listings.
type Result struct {
	Jobs         []model.NormalizedListing `json:"jobs"`
	TotalMatched int                       `json:"totalMatched"`
	TotalFetched int                       `json:"totalFetched"`
	Keywords     []string                  `json:"keywords"`
	Sources      []model.SourceKey         `json:"sources"`
	Freshness    model.Freshness           `json:"freshness"`
	Cached       bool                      `json:"cached"`
}

// query is a validated Params.
type query struct {
	keywords  []string
	excludes  []string
	sources   []model.SourceKey
	freshness model.Freshness
}

// Service runs ad-hoc searches over the shared aggregator.
type Service struct {
	fetcher Fetcher
	cache   *Cache
}

// NewService returns a Service using the given cache.
func NewService(fetcher Fetcher, cache *Cache) *Service {
	return &Service{fetcher: fetcher, cache: cache}
}

// Search validates params, consults the cache, and otherwise fetches live,
// ranks and caches. Invalid input yields a store.ValidationError.
func (s *Service) Search(ctx context.Context, params Params) (*Result, error) {
	q, err := validate(params)
	if err != nil {
		return nil, err
	}

	key := cacheKey(q)
	if cached := s.cache.Get(key); cached != nil {
		log.Printf("[search] cache hit for %s", key)
		echoed := *cached
		echoed.Cached = true
		return &echoed, nil
	}
	s.cache.Sweep()

	jobs := s.fetcher.FetchAll(ctx, q.sources, q.freshness.Window())
	ranked := match.Rank(jobs, q.keywords, q.excludes, defaultMaxResults)

	result := &Result{
		Jobs:         ranked,
		TotalMatched: len(ranked),
		TotalFetched: len(jobs),
		Keywords:     q.keywords,
		Sources:      q.sources,
		Freshness:    q.freshness,
	}
	s.cache.Put(key, result)
	return result, nil
}

// validate normalizes and checks params against the known enumerations.
func validate(params Params) (query, error) {
	keywords := match.NormalizeKeywords(params.Keywords)
	if len(keywords) == 0 {
		return query{}, &store.ValidationError{Msg: "no keywords supplied"}
	}

	sources := model.AllSources()
	if len(params.Sources) > 0 {
		sources = sources[:0]
		seen := make(map[model.SourceKey]bool)
		for _, raw := range params.Sources {
			key, err := model.ParseSourceKey(strings.ToLower(strings.TrimSpace(raw)))
			if err != nil {
				return query{}, &store.ValidationError{Msg: err.Error()}
			}
			if !seen[key] {
				seen[key] = true
				sources = append(sources, key)
			}
		}
	}

	freshness := DefaultFreshness
	if params.Freshness != "" {
		var err error
		freshness, err = model.ParseFreshness(params.Freshness)
		if err != nil {
			return query{}, &store.ValidationError{Msg: err.Error()}
		}
	}

	return query{
		keywords:  keywords,
		excludes:  match.NormalizeKeywords(params.ExcludeKeywords),
		sources:   sources,
		freshness: freshness,
	}, nil
}

// cacheKey builds the normalized composite key: sorted keywords, sorted
// sources, freshness preset, sorted excludes. Every list is sorted so that
// the same query in a different order hits the same entry.
func cacheKey(q query) string {
	keywords := append([]string(nil), q.keywords...)
	sort.Strings(keywords)

	sources := make([]string, 0, len(q.sources))
	for _, s := range q.sources {
		sources = append(sources, string(s))
	}
	sort.Strings(sources)

	excludes := append([]string(nil), q.excludes...)
	sort.Strings(excludes)

	return fmt.Sprintf("kw=%s|src=%s|fresh=%s|ex=%s",
		strings.Join(keywords, ","),
		strings.Join(sources, ","),
		q.freshness,
		strings.Join(excludes, ","),
	)
}
