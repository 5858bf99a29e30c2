package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"jobdash/alerts-service/internal/model"
)

const redditDefaultURL = "https://www.reddit.com/r/forhire/new.json?limit=50"

// hiringPhrases marks untagged posts that read like an offer rather than a
// candidate looking for work.
var hiringPhrases = []string{"hiring", "we're looking for", "we are looking for", "looking to hire"}

// RedditAdapter fetches new posts from a for-hire subreddit. The subreddit is
// untagged prose, so a lightweight heuristic keeps only hiring-shaped posts:
// a "Hiring" flair, a "[Hiring]" bracket tag, or a hiring phrase in the title.
type RedditAdapter struct {
	url    string
	client *http.Client
}

// NewRedditAdapter constructs the adapter against r/forhire.
func NewRedditAdapter() *RedditAdapter {
	return &RedditAdapter{url: redditDefaultURL, client: newHTTPClient()}
}

// redditListing mirrors the subreddit listing envelope.
type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// redditPost mirrors a single post.
type redditPost struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	SelfText   string  `json:"selftext"`
	FlairText  string  `json:"link_flair_text"`
	Author     string  `json:"author"`
	CreatedUTC float64 `json:"created_utc"`
	Permalink  string  `json:"permalink"`
	Subreddit  string  `json:"subreddit"`
}

func (a *RedditAdapter) Key() model.SourceKey { return model.SourceReddit }

// Fetch retrieves the newest posts and keeps the hiring-shaped ones.
func (a *RedditAdapter) Fetch(ctx context.Context) ([]model.NormalizedListing, error) {
	body, err := getJSON(ctx, a.client, a.url)
	if err != nil {
		return nil, fmt.Errorf("reddit: %w", err)
	}

	var listing redditListing
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("reddit: json unmarshal: %w", err)
	}

	listings := make([]model.NormalizedListing, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		p := child.Data
		if p.ID == "" || p.Title == "" || !isHiringPost(p) {
			continue
		}
		text := CapDescription(StripTags(p.SelfText))

		var tags []string
		if p.Subreddit != "" {
			tags = append(tags, p.Subreddit)
		}
		if p.FlairText != "" {
			tags = append(tags, p.FlairText)
		}

		listings = append(listings, model.NormalizedListing{
			ExternalID:   model.SourceReddit.ExternalID(p.ID),
			Source:       model.SourceReddit,
			Title:        p.Title,
			Description:  text,
			URL:          "https://www.reddit.com" + p.Permalink,
			ContactEmail: ExtractEmail(text),
			Location:     GuessLocation(p.Title + " " + text),
			Tags:         tags,
			PublishedAt:  time.Unix(int64(p.CreatedUTC), 0).UTC(),
		})
	}
	return listings, nil
}

// isHiringPost filters out clearly irrelevant posts before aggregation.
func isHiringPost(p redditPost) bool {
	if strings.EqualFold(strings.TrimSpace(p.FlairText), "hiring") {
		return true
	}
	title := strings.ToLower(p.Title)
	if strings.HasPrefix(title, "[hiring]") {
		return true
	}
	if strings.Contains(title, "[for hire]") || strings.HasPrefix(title, "[forhire]") {
		return false
	}
	for _, phrase := range hiringPhrases {
		if strings.Contains(title, phrase) {
			return true
		}
	}
	return false
}
