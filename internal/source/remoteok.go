package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"jobdash/alerts-service/internal/model"
)

const remoteOKDefaultURL = "https://remoteok.com/api"

// RemoteOKAdapter fetches postings from the RemoteOK public API.
//
// The endpoint returns a JSON array whose first element is a legal-notice
// object without an id; entries missing an id or a position are skipped.
type RemoteOKAdapter struct {
	url    string
	client *http.Client
}

// NewRemoteOKAdapter constructs the adapter against the public endpoint.
func NewRemoteOKAdapter() *RemoteOKAdapter {
	return &RemoteOKAdapter{url: remoteOKDefaultURL, client: newHTTPClient()}
}

// remoteOKJob mirrors a single RemoteOK entry.
type remoteOKJob struct {
	ID          json.Number `json:"id"`
	Position    string      `json:"position"`
	Company     string      `json:"company"`
	Description string      `json:"description"`
	Tags        []string    `json:"tags"`
	Date        string      `json:"date"`
	URL         string      `json:"url"`
	Location    string      `json:"location"`
	SalaryMin   int         `json:"salary_min"`
	SalaryMax   int         `json:"salary_max"`
}

func (a *RemoteOKAdapter) Key() model.SourceKey { return model.SourceRemoteOK }

// Fetch retrieves the latest postings in a single call.
func (a *RemoteOKAdapter) Fetch(ctx context.Context) ([]model.NormalizedListing, error) {
	body, err := getJSON(ctx, a.client, a.url)
	if err != nil {
		return nil, fmt.Errorf("remoteok: %w", err)
	}

	var jobs []remoteOKJob
	if err := json.Unmarshal(body, &jobs); err != nil {
		return nil, fmt.Errorf("remoteok: json unmarshal: %w", err)
	}

	listings := make([]model.NormalizedListing, 0, len(jobs))
	for _, j := range jobs {
		if j.ID.String() == "" || j.Position == "" {
			continue // legal-notice header or malformed entry
		}
		description := CapDescription(StripTags(j.Description))

		var salary string
		if j.SalaryMin > 0 && j.SalaryMax > 0 {
			salary = fmt.Sprintf("$%d–$%d", j.SalaryMin, j.SalaryMax)
		}

		listings = append(listings, model.NormalizedListing{
			ExternalID:   model.SourceRemoteOK.ExternalID(j.ID.String()),
			Source:       model.SourceRemoteOK,
			Title:        j.Position,
			Company:      j.Company,
			Description:  description,
			URL:          j.URL,
			ContactEmail: ExtractEmail(description),
			Location:     j.Location,
			Salary:       salary,
			Tags:         j.Tags,
			PublishedAt:  parseRemoteOKTime(j.Date),
		})
	}
	return listings, nil
}

func parseRemoteOKTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}
