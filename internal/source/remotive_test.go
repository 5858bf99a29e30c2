package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"jobdash/alerts-service/internal/model"
)

const remotiveSample = `{
  "jobs": [
    {
      "id": 190001,
      "url": "https://remotive.com/jobs/190001",
      "title": "Senior Go Engineer",
      "company_name": "Acme",
      "category": "Software Development",
      "job_type": "full_time",
      "publication_date": "2026-08-28T09:30:00",
      "candidate_required_location": "Worldwide",
      "salary": "$120k-$150k",
      "description": "<p>Build APIs. Contact <b>jobs@acme.io</b></p>",
      "tags": ["go", "aws"]
    },
    {
      "id": 190002,
      "url": "https://remotive.com/jobs/190002",
      "title": "",
      "company_name": "Nameless",
      "publication_date": "2026-08-28T09:30:00"
    }
  ]
}`

func TestRemotive_Fetch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(remotiveSample))
	}))
	defer ts.Close()

	a := &RemotiveAdapter{url: ts.URL, client: ts.Client()}
	got, err := a.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Fetch returned %d listing(s), want 1 (untitled entry skipped)", len(got))
	}

	l := got[0]
	if l.ExternalID != "remotive:190001" {
		t.Errorf("ExternalID = %q, want remotive:190001", l.ExternalID)
	}
	if l.Source != model.SourceRemotive {
		t.Errorf("Source = %q, want remotive", l.Source)
	}
	if l.Company != "Acme" || l.Title != "Senior Go Engineer" {
		t.Errorf("mapped title/company = %q / %q", l.Title, l.Company)
	}
	if l.Description != "Build APIs. Contact jobs@acme.io" {
		t.Errorf("Description = %q, want markup stripped", l.Description)
	}
	if l.ContactEmail != "jobs@acme.io" {
		t.Errorf("ContactEmail = %q, want jobs@acme.io", l.ContactEmail)
	}
	if len(l.Tags) != 4 { // category + job_type + two provider tags
		t.Errorf("Tags = %v, want 4 entries", l.Tags)
	}
	if l.PublishedAt.IsZero() {
		t.Error("PublishedAt not parsed")
	}
}

func TestRemotive_NonOKStatusIsError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer ts.Close()

	a := &RemotiveAdapter{url: ts.URL, client: ts.Client()}
	if _, err := a.Fetch(context.Background()); err == nil {
		t.Error("Fetch on 429 expected error, got nil")
	}
}

func TestRemotive_MalformedPayloadIsError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer ts.Close()

	a := &RemotiveAdapter{url: ts.URL, client: ts.Client()}
	if _, err := a.Fetch(context.Background()); err == nil {
		t.Error("Fetch on malformed payload expected error, got nil")
	}
}
