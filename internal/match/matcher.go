// Package match scores and ranks aggregated listings against an alert's
// keyword sets. Deterministic: identical inputs produce identical output.
package match

import (
	"sort"
	"strings"

	"jobdash/alerts-service/internal/model"
)

const (
	titleScore       = 3
	descriptionScore = 1
	tagScore         = 1

	// DiversityCap bounds how many matched listings one source may
	// contribute. Applied after ranking, independently of the
	// aggregator's own per-source cap.
	DiversityCap = 2
)

// NormalizeKeywords lowercases, trims and dedupes a keyword list, preserving
// first-seen order.
func NormalizeKeywords(keywords []string) []string {
	seen := make(map[string]bool, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

// Score returns the additive keyword score for one listing: +3 per keyword
// found in the title, +1 in the description, +1 in the joined tag text.
// A keyword present in several locations earns every applicable bonus.
func Score(l model.NormalizedListing, keywords []string) int {
	title := strings.ToLower(l.Title)
	description := strings.ToLower(l.Description)
	tags := strings.ToLower(strings.Join(l.Tags, " "))

	score := 0
	for _, k := range keywords {
		if strings.Contains(title, k) {
			score += titleScore
		}
		if strings.Contains(description, k) {
			score += descriptionScore
		}
		if strings.Contains(tags, k) {
			score += tagScore
		}
	}
	return score
}

// excluded reports whether any exclude keyword appears in the listing's
// combined lower-cased title + description. Exclusion wins over any score.
func excluded(l model.NormalizedListing, excludeKeywords []string) bool {
	if len(excludeKeywords) == 0 {
		return false
	}
	combined := strings.ToLower(l.Title + " " + l.Description)
	for _, k := range excludeKeywords {
		if k == "" {
			continue
		}
		if strings.Contains(combined, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

type scored struct {
	listing model.NormalizedListing
	score   int
}

// Rank scores jobs against the keyword sets and returns the best maxResults
// listings, ordered by score descending with publishedAt (newest first) as
// tie-break. Listings hitting an exclude keyword or scoring zero are dropped.
//
// A greedy per-source diversity walk caps each source at DiversityCap entries
// in the output. If that walk would return nothing while candidates exist,
// the single highest-ranked candidate is force-included — the ranked output
// is never empty when something scored above zero.
func Rank(jobs []model.NormalizedListing, keywords, excludeKeywords []string, maxResults int) []model.NormalizedListing {
	keywords = NormalizeKeywords(keywords)

	candidates := make([]scored, 0, len(jobs))
	for _, job := range jobs {
		if excluded(job, excludeKeywords) {
			continue
		}
		s := Score(job, keywords)
		if s == 0 {
			continue
		}
		candidates = append(candidates, scored{listing: job, score: s})
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].listing.PublishedAt.After(candidates[j].listing.PublishedAt)
	})

	if maxResults <= 0 {
		maxResults = len(candidates)
	}

	perSource := make(map[model.SourceKey]int)
	out := make([]model.NormalizedListing, 0, maxResults)
	for _, c := range candidates {
		if len(out) >= maxResults {
			break
		}
		if perSource[c.listing.Source] >= DiversityCap {
			continue
		}
		perSource[c.listing.Source]++
		out = append(out, c.listing)
	}

	if len(out) == 0 {
		// Degenerate cap configuration — keep the top candidate anyway.
		out = append(out, candidates[0].listing)
	}
	return out
}
