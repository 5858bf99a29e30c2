package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"jobdash/alerts-service/internal/model"
)

const (
	hnSearchDefaultURL = "https://hn.algolia.com/api/v1/search_by_date?tags=story,author_whoishiring&query=hiring&hitsPerPage=5"
	hnItemDefaultURL   = "https://hacker-news.firebaseio.com/v0/item/%d.json"

	hnCommentCap = 60 // top-level comments considered per thread
	hnBatchSize  = 10 // concurrent item fetches per batch — Firebase rate limits
)

// HackerNewsAdapter flattens the latest "Ask HN: Who is hiring?" megathread
// into individual listings, one per top-level comment. The parent thread is
// only used to locate the children.
type HackerNewsAdapter struct {
	searchURL string
	itemURL   string // printf format taking the numeric item id
	client    *http.Client
}

// NewHackerNewsAdapter constructs the adapter against the public Algolia and
// Firebase endpoints.
func NewHackerNewsAdapter() *HackerNewsAdapter {
	return &HackerNewsAdapter{
		searchURL: hnSearchDefaultURL,
		itemURL:   hnItemDefaultURL,
		client:    newHTTPClient(),
	}
}

// hnSearchResponse mirrors the Algolia search response.
type hnSearchResponse struct {
	Hits []hnSearchHit `json:"hits"`
}

type hnSearchHit struct {
	ObjectID string `json:"objectID"`
	Title    string `json:"title"`
}

// hnItem mirrors a Firebase item (story or comment).
type hnItem struct {
	ID      int64   `json:"id"`
	By      string  `json:"by"`
	Text    string  `json:"text"`
	Time    int64   `json:"time"`
	Kids    []int64 `json:"kids"`
	Deleted bool    `json:"deleted"`
	Dead    bool    `json:"dead"`
}

func (a *HackerNewsAdapter) Key() model.SourceKey { return model.SourceHackerNews }

// Fetch locates the newest hiring megathread and fetches its top-level
// comments in bounded batches. Individual comment failures are skipped.
func (a *HackerNewsAdapter) Fetch(ctx context.Context) ([]model.NormalizedListing, error) {
	threadID, err := a.findThread(ctx)
	if err != nil {
		return nil, fmt.Errorf("hackernews: %w", err)
	}

	thread, err := a.fetchItem(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("hackernews: thread %d: %w", threadID, err)
	}

	kids := thread.Kids
	if len(kids) > hnCommentCap {
		kids = kids[:hnCommentCap]
	}

	var listings []model.NormalizedListing
	for start := 0; start < len(kids); start += hnBatchSize {
		end := start + hnBatchSize
		if end > len(kids) {
			end = len(kids)
		}
		listings = append(listings, a.fetchBatch(ctx, kids[start:end])...)
	}
	return listings, nil
}

// findThread returns the id of the newest story titled like a hiring thread.
func (a *HackerNewsAdapter) findThread(ctx context.Context) (int64, error) {
	body, err := getJSON(ctx, a.client, a.searchURL)
	if err != nil {
		return 0, err
	}

	var resp hnSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("json unmarshal: %w", err)
	}

	for _, hit := range resp.Hits {
		if strings.Contains(strings.ToLower(hit.Title), "who is hiring") {
			var id int64
			if _, err := fmt.Sscanf(hit.ObjectID, "%d", &id); err == nil {
				return id, nil
			}
		}
	}
	return 0, fmt.Errorf("no hiring thread in %d hits", len(resp.Hits))
}

func (a *HackerNewsAdapter) fetchItem(ctx context.Context, id int64) (*hnItem, error) {
	body, err := getJSON(ctx, a.client, fmt.Sprintf(a.itemURL, id))
	if err != nil {
		return nil, err
	}
	var item hnItem
	if err := json.Unmarshal(body, &item); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	return &item, nil
}

// fetchBatch fetches one bounded batch of comments concurrently.
func (a *HackerNewsAdapter) fetchBatch(ctx context.Context, ids []int64) []model.NormalizedListing {
	results := make([]*model.NormalizedListing, len(ids))
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id int64) {
			defer wg.Done()
			item, err := a.fetchItem(ctx, id)
			if err != nil {
				log.Printf("[hackernews] comment %d skipped: %v", id, err)
				return
			}
			if item.Deleted || item.Dead || strings.TrimSpace(item.Text) == "" {
				return
			}
			l := commentToListing(item)
			results[i] = &l
		}(i, id)
	}
	wg.Wait()

	listings := make([]model.NormalizedListing, 0, len(ids))
	for _, r := range results {
		if r != nil {
			listings = append(listings, *r)
		}
	}
	return listings
}

// commentToListing maps one megathread comment to a listing. Comments follow
// the "Company | Role | Location | …" first-line convention; the pipe
// segments feed title/company and everything stays best-effort.
func commentToListing(item *hnItem) model.NormalizedListing {
	// First paragraph is the header line; <p> separates paragraphs.
	header := item.Text
	if idx := strings.Index(header, "<p>"); idx >= 0 {
		header = header[:idx]
	}
	header = capBytes(StripTags(header), 140)

	var company string
	if segments := strings.Split(header, "|"); len(segments) >= 2 {
		company = strings.TrimSpace(segments[0])
	}

	text := CapDescription(StripTags(item.Text))
	nativeID := fmt.Sprintf("%d", item.ID)

	return model.NormalizedListing{
		ExternalID:   model.SourceHackerNews.ExternalID(nativeID),
		Source:       model.SourceHackerNews,
		Title:        header,
		Company:      company,
		Description:  text,
		URL:          "https://news.ycombinator.com/item?id=" + nativeID,
		ContactEmail: ExtractEmail(text),
		Location:     GuessLocation(text),
		Tags:         []string{"who-is-hiring"},
		PublishedAt:  time.Unix(item.Time, 0).UTC(),
	}
}
