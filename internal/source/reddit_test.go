package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const redditSample = `{
  "data": {
    "children": [
      {"data": {
        "id": "abc1",
        "title": "[Hiring] Go backend developer for fintech startup",
        "selftext": "Remote role. Reach us at talent@fin.co",
        "link_flair_text": "Hiring",
        "created_utc": 1787000000,
        "permalink": "/r/forhire/comments/abc1/hiring_go/",
        "subreddit": "forhire"
      }},
      {"data": {
        "id": "abc2",
        "title": "[For Hire] Experienced designer available",
        "selftext": "portfolio inside",
        "link_flair_text": "For Hire",
        "created_utc": 1787000100,
        "permalink": "/r/forhire/comments/abc2/forhire/",
        "subreddit": "forhire"
      }},
      {"data": {
        "id": "abc3",
        "title": "We are looking for a React contractor",
        "selftext": "",
        "link_flair_text": "",
        "created_utc": 1787000200,
        "permalink": "/r/forhire/comments/abc3/react/",
        "subreddit": "forhire"
      }}
    ]
  }
}`

func TestReddit_FetchKeepsOnlyHiringPosts(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(redditSample))
	}))
	defer ts.Close()

	a := &RedditAdapter{url: ts.URL, client: ts.Client()}
	got, err := a.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Fetch returned %d listing(s), want 2 (for-hire post excluded)", len(got))
	}

	first := got[0]
	if first.ExternalID != "reddit:abc1" {
		t.Errorf("ExternalID = %q, want reddit:abc1", first.ExternalID)
	}
	if first.URL != "https://www.reddit.com/r/forhire/comments/abc1/hiring_go/" {
		t.Errorf("URL = %q", first.URL)
	}
	if first.ContactEmail != "talent@fin.co" {
		t.Errorf("ContactEmail = %q, want talent@fin.co", first.ContactEmail)
	}
	if first.Location != "Remote" {
		t.Errorf("Location = %q, want Remote", first.Location)
	}
	if first.PublishedAt.Unix() != 1787000000 {
		t.Errorf("PublishedAt = %v, want created_utc", first.PublishedAt)
	}

	if got[1].ExternalID != "reddit:abc3" {
		t.Errorf("second listing = %q, want reddit:abc3 (phrase heuristic)", got[1].ExternalID)
	}
}

func TestIsHiringPost(t *testing.T) {
	cases := []struct {
		name string
		post redditPost
		want bool
	}{
		{"hiring flair", redditPost{Title: "Need a dev", FlairText: "Hiring"}, true},
		{"hiring flair case-insensitive", redditPost{Title: "Need a dev", FlairText: "hiring"}, true},
		{"bracket tag", redditPost{Title: "[Hiring] Go dev"}, true},
		{"phrase match", redditPost{Title: "We're looking for a designer"}, true},
		{"for-hire bracket rejected", redditPost{Title: "[For Hire] I do hiring consultancy"}, false},
		{"unrelated", redditPost{Title: "What rate should I charge?"}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := isHiringPost(c.post); got != c.want {
				t.Errorf("isHiringPost(%q) = %v, want %v", c.post.Title, got, c.want)
			}
		})
	}
}
