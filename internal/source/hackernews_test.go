package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func newHNTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"hits": [
			{"objectID": "900", "title": "Ask HN: Freelancer? Seeking freelancer?"},
			{"objectID": "901", "title": "Ask HN: Who is hiring? (August 2026)"}
		]}`)
	})
	mux.HandleFunc("/item/901.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id": 901, "kids": [1001, 1002, 1003], "time": 1787000000}`)
	})
	mux.HandleFunc("/item/1001.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id": 1001, "by": "acme", "time": 1787000100,
			"text": "Acme Corp | Backend Engineer | Remote (Europe)<p>We build billing APIs in Go. Apply: hiring@acme.dev"}`)
	})
	mux.HandleFunc("/item/1002.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id": 1002, "deleted": true}`)
	})
	mux.HandleFunc("/item/1003.json", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusServiceUnavailable)
	})

	return httptest.NewServer(mux)
}

func TestHackerNews_FetchFlattensThread(t *testing.T) {
	ts := newHNTestServer(t)
	defer ts.Close()

	a := &HackerNewsAdapter{
		searchURL: ts.URL + "/search",
		itemURL:   ts.URL + "/item/%d.json",
		client:    ts.Client(),
	}

	got, err := a.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	// 1001 mapped; 1002 deleted; 1003 failed and is skipped, not fatal.
	if len(got) != 1 {
		t.Fatalf("Fetch returned %d listing(s), want 1", len(got))
	}

	l := got[0]
	if l.ExternalID != "hackernews:1001" {
		t.Errorf("ExternalID = %q, want hackernews:1001", l.ExternalID)
	}
	if l.Title != "Acme Corp | Backend Engineer | Remote (Europe)" {
		t.Errorf("Title = %q, want the header line", l.Title)
	}
	if l.Company != "Acme Corp" {
		t.Errorf("Company = %q, want Acme Corp", l.Company)
	}
	if l.ContactEmail != "hiring@acme.dev" {
		t.Errorf("ContactEmail = %q, want hiring@acme.dev", l.ContactEmail)
	}
	if l.Location != "Remote" {
		t.Errorf("Location = %q, want Remote", l.Location)
	}
	if l.URL != "https://news.ycombinator.com/item?id=1001" {
		t.Errorf("URL = %q", l.URL)
	}
	if !l.PublishedAt.Equal(time.Unix(1787000100, 0).UTC()) {
		t.Errorf("PublishedAt = %v, want the comment time", l.PublishedAt)
	}
}

func TestHackerNews_NoThreadFoundIsError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"hits": []}`)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	a := &HackerNewsAdapter{
		searchURL: ts.URL + "/search",
		itemURL:   ts.URL + "/item/%d.json",
		client:    ts.Client(),
	}
	if _, err := a.Fetch(context.Background()); err == nil {
		t.Error("Fetch with no hiring thread expected error, got nil")
	}
}

func TestCommentToListing_HeaderParsing(t *testing.T) {
	item := &hnItem{
		ID:   42,
		Time: 1787000000,
		Text: "Widgets Inc | Senior Gopher | NYC or remote<p>Long description here.",
	}
	l := commentToListing(item)
	if l.Company != "Widgets Inc" {
		t.Errorf("Company = %q, want Widgets Inc", l.Company)
	}
	if l.Title != "Widgets Inc | Senior Gopher | NYC or remote" {
		t.Errorf("Title = %q", l.Title)
	}

	// No pipe segments — company stays empty, title is the first line.
	plain := commentToListing(&hnItem{ID: 43, Time: 1787000000, Text: "Just a plain hiring note"})
	if plain.Company != "" {
		t.Errorf("Company = %q, want empty for unsegmented header", plain.Company)
	}
	if plain.Title != "Just a plain hiring note" {
		t.Errorf("Title = %q", plain.Title)
	}

	// Headers longer than the cap with a multibyte rune at the boundary must
	// still yield valid UTF-8 titles.
	long := commentToListing(&hnItem{ID: 44, Time: 1787000000, Text: strings.Repeat("a", 139) + "é | Zürich"})
	if !utf8.ValidString(long.Title) {
		t.Errorf("Title is invalid UTF-8: %q", long.Title)
	}
	if len(long.Title) > 140 {
		t.Errorf("Title length = %d, want <= 140", len(long.Title))
	}
}
