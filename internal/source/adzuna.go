package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"jobdash/alerts-service/internal/model"
)

const (
	adzunaBaseURL  = "https://api.adzuna.com/v1/api/jobs"
	adzunaPageSize = 50
)

// AdzunaAdapter fetches postings from the Adzuna search API, newest first.
// If AppID or AppKey is empty, Fetch returns (nil, nil) gracefully — the
// aggregator simply sees an empty source and logs a warning here.
type AdzunaAdapter struct {
	AppID   string
	AppKey  string
	Country string // "fr", "gb", "us", …
	client  *http.Client
}

// NewAdzunaAdapter constructs an adapter with a shared HTTP client.
func NewAdzunaAdapter(appID, appKey, country string) *AdzunaAdapter {
	return &AdzunaAdapter{
		AppID:   appID,
		AppKey:  appKey,
		Country: country,
		client:  newHTTPClient(),
	}
}

// adzunaResponse mirrors the top-level Adzuna JSON response.
type adzunaResponse struct {
	Results []adzunaResult `json:"results"`
}

// adzunaResult mirrors a single Adzuna job listing.
type adzunaResult struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Company     adzunaCompany  `json:"company"`
	Location    adzunaLocation `json:"location"`
	SalaryMin   float64        `json:"salary_min"`
	SalaryMax   float64        `json:"salary_max"`
	RedirectURL string         `json:"redirect_url"`
	Created     string         `json:"created"`
	Category    adzunaCategory `json:"category"`
}

type adzunaCompany struct {
	DisplayName string `json:"display_name"`
}

type adzunaLocation struct {
	DisplayName string `json:"display_name"`
}

type adzunaCategory struct {
	Label string `json:"label"`
}

func (a *AdzunaAdapter) Key() model.SourceKey { return model.SourceAdzuna }

// Fetch retrieves the most recent page of offers, sorted by date.
// Returns nil without error when credentials are missing.
func (a *AdzunaAdapter) Fetch(ctx context.Context) ([]model.NormalizedListing, error) {
	if a.AppID == "" || a.AppKey == "" {
		log.Println("[adzuna] ADZUNA_APP_ID / ADZUNA_APP_KEY not set — skipping fetch")
		return nil, nil
	}

	endpoint := fmt.Sprintf("%s/%s/search/1", adzunaBaseURL, a.Country)
	params := url.Values{}
	params.Set("app_id", a.AppID)
	params.Set("app_key", a.AppKey)
	params.Set("results_per_page", strconv.Itoa(adzunaPageSize))
	params.Set("content-type", "application/json")
	params.Set("sort_by", "date")

	body, err := getJSON(ctx, a.client, endpoint+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("adzuna: %w", err)
	}

	var resp adzunaResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("adzuna: json unmarshal: %w", err)
	}

	listings := make([]model.NormalizedListing, 0, len(resp.Results))
	for _, r := range resp.Results {
		if r.ID == "" || r.Title == "" {
			continue
		}
		description := CapDescription(StripTags(r.Description))

		var salary string
		if r.SalaryMin > 0 || r.SalaryMax > 0 {
			salary = fmt.Sprintf("%.0f–%.0f", r.SalaryMin, r.SalaryMax)
		}

		var tags []string
		if r.Category.Label != "" {
			tags = append(tags, r.Category.Label)
		}

		listings = append(listings, model.NormalizedListing{
			ExternalID:   model.SourceAdzuna.ExternalID(r.ID),
			Source:       model.SourceAdzuna,
			Title:        r.Title,
			Company:      r.Company.DisplayName,
			Description:  description,
			URL:          r.RedirectURL,
			ContactEmail: ExtractEmail(description),
			Location:     r.Location.DisplayName,
			Salary:       salary,
			Tags:         tags,
			PublishedAt:  parseAdzunaTime(r.Created),
		})
	}
	return listings, nil
}

// parseAdzunaTime handles both RFC3339 and Adzuna's bare timestamp form.
func parseAdzunaTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t
	}
	return time.Time{}
}
