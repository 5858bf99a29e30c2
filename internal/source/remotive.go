package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"jobdash/alerts-service/internal/model"
)

const remotiveDefaultURL = "https://remotive.com/api/remote-jobs?limit=50"

// RemotiveAdapter fetches remote-job postings from the Remotive public API.
type RemotiveAdapter struct {
	url    string
	client *http.Client
}

// NewRemotiveAdapter constructs the adapter against the public endpoint.
func NewRemotiveAdapter() *RemotiveAdapter {
	return &RemotiveAdapter{url: remotiveDefaultURL, client: newHTTPClient()}
}

// remotiveResponse mirrors the top-level Remotive JSON response.
type remotiveResponse struct {
	Jobs []remotiveJob `json:"jobs"`
}

// remotiveJob mirrors a single Remotive posting.
type remotiveJob struct {
	ID          json.Number `json:"id"`
	URL         string      `json:"url"`
	Title       string      `json:"title"`
	CompanyName string      `json:"company_name"`
	Category    string      `json:"category"`
	JobType     string      `json:"job_type"`
	Publication string      `json:"publication_date"`
	Location    string      `json:"candidate_required_location"`
	Salary      string      `json:"salary"`
	Description string      `json:"description"`
	Tags        []string    `json:"tags"`
}

func (a *RemotiveAdapter) Key() model.SourceKey { return model.SourceRemotive }

// Fetch retrieves the latest postings in a single call.
func (a *RemotiveAdapter) Fetch(ctx context.Context) ([]model.NormalizedListing, error) {
	body, err := getJSON(ctx, a.client, a.url)
	if err != nil {
		return nil, fmt.Errorf("remotive: %w", err)
	}

	var resp remotiveResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("remotive: json unmarshal: %w", err)
	}

	listings := make([]model.NormalizedListing, 0, len(resp.Jobs))
	for _, j := range resp.Jobs {
		if j.ID.String() == "" || j.Title == "" {
			continue
		}
		description := CapDescription(StripTags(j.Description))

		tags := make([]string, 0, len(j.Tags)+2)
		if j.Category != "" {
			tags = append(tags, j.Category)
		}
		if j.JobType != "" {
			tags = append(tags, j.JobType)
		}
		tags = append(tags, j.Tags...)

		listings = append(listings, model.NormalizedListing{
			ExternalID:   model.SourceRemotive.ExternalID(j.ID.String()),
			Source:       model.SourceRemotive,
			Title:        j.Title,
			Company:      j.CompanyName,
			Description:  description,
			URL:          j.URL,
			ContactEmail: ExtractEmail(description),
			Location:     j.Location,
			Salary:       j.Salary,
			Tags:         tags,
			PublishedAt:  parseRemotiveTime(j.Publication),
		})
	}
	return listings, nil
}

// parseRemotiveTime handles Remotive's bare "2006-01-02T15:04:05" timestamps,
// falling back to RFC3339.
func parseRemotiveTime(s string) time.Time {
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}
