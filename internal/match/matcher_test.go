package match_test

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"jobdash/alerts-service/internal/match"
	"jobdash/alerts-service/internal/model"
)

var now = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func listing(id string, source model.SourceKey, title, description string, age time.Duration, tags ...string) model.NormalizedListing {
	return model.NormalizedListing{
		ExternalID:  source.ExternalID(id),
		Source:      source,
		Title:       title,
		Description: description,
		Tags:        tags,
		PublishedAt: now.Add(-age),
	}
}

// ── Score ──────────────────────────────────────────────────────────────────

func TestScore_TitleDescriptionAndTags(t *testing.T) {
	cases := []struct {
		name     string
		job      model.NormalizedListing
		keywords []string
		want     int
	}{
		{
			name:     "title only",
			job:      listing("1", model.SourceRemotive, "React Developer", "build things", time.Hour),
			keywords: []string{"react"},
			want:     3,
		},
		{
			name:     "description only",
			job:      listing("2", model.SourceRemotive, "Frontend Developer", "we use react daily", time.Hour),
			keywords: []string{"react"},
			want:     1,
		},
		{
			name:     "tags only",
			job:      listing("3", model.SourceRemotive, "Frontend Developer", "build things", time.Hour, "react"),
			keywords: []string{"react"},
			want:     1,
		},
		{
			name:     "title and description stack",
			job:      listing("4", model.SourceRemotive, "React Developer", "senior react role", time.Hour),
			keywords: []string{"react"},
			want:     4,
		},
		{
			name:     "all locations and two keywords",
			job:      listing("5", model.SourceRemotive, "Go and React", "go react shop", time.Hour, "go", "react"),
			keywords: []string{"go", "react"},
			want:     10,
		},
		{
			name:     "no hit",
			job:      listing("6", model.SourceRemotive, "Accountant", "spreadsheets", time.Hour),
			keywords: []string{"react"},
			want:     0,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := match.Score(c.job, c.keywords); got != c.want {
				t.Errorf("Score = %d, want %d", got, c.want)
			}
		})
	}
}

// ── Rank — exclusion precedence ────────────────────────────────────────────

func TestRank_ExcludeWinsOverInclude(t *testing.T) {
	// Exclude keyword contains the include keyword as a substring.
	jobs := []model.NormalizedListing{
		listing("1", model.SourceRemotive, "Senior Engineer", "great role", time.Hour),
	}
	got := match.Rank(jobs, []string{"engineer"}, []string{"senior engineer"}, 10)
	if len(got) != 0 {
		t.Errorf("Rank returned %d listing(s), want 0 — exclusion must win", len(got))
	}
}

func TestRank_ExcludeMatchesDescription(t *testing.T) {
	jobs := []model.NormalizedListing{
		listing("1", model.SourceRemotive, "Engineer", "crypto startup", time.Hour),
	}
	got := match.Rank(jobs, []string{"engineer"}, []string{"crypto"}, 10)
	if len(got) != 0 {
		t.Errorf("Rank returned %d listing(s), want 0", len(got))
	}
}

// ── Rank — zero score dropped ──────────────────────────────────────────────

func TestRank_ZeroScoreDropped(t *testing.T) {
	jobs := []model.NormalizedListing{
		listing("1", model.SourceRemotive, "Accountant", "spreadsheets", time.Hour),
	}
	if got := match.Rank(jobs, []string{"react"}, nil, 10); len(got) != 0 {
		t.Errorf("Rank returned %d listing(s), want 0 — keyword presence is required", len(got))
	}
}

// ── Rank — ordering ────────────────────────────────────────────────────────

func TestRank_ScoreDescendingThenNewestFirst(t *testing.T) {
	jobs := []model.NormalizedListing{
		listing("old", model.SourceRemotive, "React Developer", "", 3*time.Hour),
		listing("new", model.SourceRemoteOK, "React Developer", "", time.Hour),
		listing("strong", model.SourceReddit, "React Developer", "react everywhere", 5*time.Hour),
	}
	got := match.Rank(jobs, []string{"react"}, nil, 10)
	wantOrder := []string{"reddit:strong", "remoteok:new", "remotive:old"}
	var gotOrder []string
	for _, l := range got {
		gotOrder = append(gotOrder, l.ExternalID)
	}
	if !reflect.DeepEqual(gotOrder, wantOrder) {
		t.Errorf("Rank order = %v, want %v", gotOrder, wantOrder)
	}
}

func TestRank_Deterministic(t *testing.T) {
	jobs := []model.NormalizedListing{
		listing("a", model.SourceRemotive, "Go Developer", "go", time.Hour),
		listing("b", model.SourceRemoteOK, "Go Developer", "go", time.Hour),
		listing("c", model.SourceReddit, "Go Developer", "go", time.Hour),
	}
	first := match.Rank(jobs, []string{"go"}, nil, 10)
	for i := 0; i < 5; i++ {
		again := match.Rank(jobs, []string{"go"}, nil, 10)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("Rank not deterministic: run %d differs", i)
		}
	}
}

// ── Rank — diversity cap ───────────────────────────────────────────────────

func TestRank_DiversityCapPerSource(t *testing.T) {
	// Three sources × five matching listings, equal scores, ages 0..4h so
	// recency ranks within each source. Cap 2 per source, maxResults 10 →
	// exactly two per source, the top-ranked pair of each.
	var jobs []model.NormalizedListing
	sources := []model.SourceKey{model.SourceRemotive, model.SourceRemoteOK, model.SourceReddit}
	for _, src := range sources {
		for i := 0; i < 5; i++ {
			jobs = append(jobs, listing(fmt.Sprintf("%s-%d", src, i), src,
				"Go Developer", "", time.Duration(i)*time.Hour))
		}
	}

	got := match.Rank(jobs, []string{"go"}, nil, 10)
	if len(got) != 6 {
		t.Fatalf("Rank returned %d listing(s), want 6", len(got))
	}
	counts := map[model.SourceKey]int{}
	for _, l := range got {
		counts[l.Source]++
	}
	for _, src := range sources {
		if counts[src] != 2 {
			t.Errorf("source %s contributed %d, want 2", src, counts[src])
		}
	}
	// The pair kept per source must be its two newest (ranks 0 and 1).
	for _, src := range sources {
		for _, i := range []int{0, 1} {
			want := src.ExternalID(fmt.Sprintf("%s-%d", src, i))
			found := false
			for _, l := range got {
				if l.ExternalID == want {
					found = true
				}
			}
			if !found {
				t.Errorf("expected %s in output", want)
			}
		}
	}
}

func TestRank_MaxResultsRespected(t *testing.T) {
	var jobs []model.NormalizedListing
	for i := 0; i < 4; i++ {
		jobs = append(jobs, listing(fmt.Sprintf("%d", i), model.SourceKey(fmt.Sprintf("s%d", i)),
			"Go Developer", "", time.Duration(i)*time.Hour))
	}
	if got := match.Rank(jobs, []string{"go"}, nil, 2); len(got) != 2 {
		t.Errorf("Rank returned %d listing(s), want 2", len(got))
	}
}

// ── Rank — non-empty guarantee ─────────────────────────────────────────────

func TestRank_NonEmptyWhenCandidatesExist(t *testing.T) {
	jobs := []model.NormalizedListing{
		listing("only", model.SourceRemotive, "React Developer", "", time.Hour),
	}
	// maxResults 0 normalizes to "all candidates"; the guarantee is that a
	// non-empty ranked list never collapses to nothing.
	got := match.Rank(jobs, []string{"react"}, nil, 0)
	if len(got) == 0 {
		t.Fatal("Rank returned empty output despite a scoring candidate")
	}
	if got[0].ExternalID != "remotive:only" {
		t.Errorf("Rank kept %q, want the top candidate", got[0].ExternalID)
	}
}

// ── NormalizeKeywords ──────────────────────────────────────────────────────

func TestNormalizeKeywords(t *testing.T) {
	got := match.NormalizeKeywords([]string{" React ", "GO", "react", "", "  "})
	want := []string{"react", "go"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeKeywords = %v, want %v", got, want)
	}
}
