package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"newsintel/internal/config"
)

func TestFetchServesSamplesWithoutKey(t *testing.T) {
	t.Parallel()

	client := NewNewsAPIClient(config.NewsAPIConfig{BaseURL: "https://newsapi.org/v2"}, nil, nil)

	articles, err := client.Fetch(context.Background(), "anything", 3)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(articles) != 3 {
		t.Fatalf("expected 3 sample articles, got %d", len(articles))
	}
	for _, a := range articles {
		if a.Title == "" || a.Content == "" || a.Source == "" {
			t.Fatalf("incomplete sample article: %+v", a)
		}
	}

	again, err := client.Fetch(context.Background(), "anything", 3)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if articles[0].Fingerprint() != again[0].Fingerprint() {
		t.Fatal("sample articles must be deterministic across fetches")
	}
}

func TestFetchParsesProviderResponse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Api-Key"); got != "secret" {
			t.Errorf("missing api key header, got %q", got)
		}
		q := r.URL.Query()
		if q.Get("q") != "energy" || q.Get("pageSize") != "2" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}

		w.Write([]byte(`{
			"status": "ok",
			"articles": [
				{
					"title": "Grid upgrade announced",
					"content": "<p>The operator said the upgrade <b>doubles</b> capacity.</p> [+1234 chars]",
					"url": "https://example.com/grid",
					"publishedAt": "2025-03-10T09:00:00Z",
					"source": {"name": "Reuters"}
				},
				{
					"title": "",
					"content": "",
					"source": {"name": "Empty"}
				}
			]
		}`))
	}))
	defer srv.Close()

	client := NewNewsAPIClient(config.NewsAPIConfig{BaseURL: srv.URL, APIKey: "secret"}, nil, nil)

	articles, err := client.Fetch(context.Background(), "energy", 2)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(articles) != 1 {
		t.Fatalf("expected the empty article filtered out, got %d", len(articles))
	}

	got := articles[0]
	if got.Title != "Grid upgrade announced" || got.Source != "Reuters" {
		t.Fatalf("unexpected article: %+v", got)
	}
	if strings.Contains(got.Content, "<") || strings.Contains(got.Content, "chars]") {
		t.Fatalf("markup not stripped: %q", got.Content)
	}
	if got.PublishedAt.IsZero() {
		t.Fatal("publishedAt not parsed")
	}
}

func TestTopHeadlinesServesSamplesWithoutKey(t *testing.T) {
	t.Parallel()

	client := NewNewsAPIClient(config.NewsAPIConfig{BaseURL: "https://newsapi.org/v2"}, nil, nil)

	articles, err := client.TopHeadlines(context.Background(), "business", "", 2)
	if err != nil {
		t.Fatalf("top headlines: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("expected 2 sample headlines, got %d", len(articles))
	}
}

func TestTopHeadlinesBuildsProviderQuery(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/top-headlines") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("category") != "business" || q.Get("country") != "de" || q.Get("pageSize") != "4" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}

		w.Write([]byte(`{
			"status": "ok",
			"articles": [
				{
					"title": "Central bank holds rates",
					"content": "The bank kept rates unchanged on Thursday.",
					"source": {"name": "Reuters"}
				}
			]
		}`))
	}))
	defer srv.Close()

	client := NewNewsAPIClient(config.NewsAPIConfig{BaseURL: srv.URL, APIKey: "secret"}, nil, nil)

	articles, err := client.TopHeadlines(context.Background(), "business", "de", 4)
	if err != nil {
		t.Fatalf("top headlines: %v", err)
	}
	if len(articles) != 1 || articles[0].Title != "Central bank holds rates" {
		t.Fatalf("unexpected articles: %+v", articles)
	}
}

func TestTopHeadlinesDefaultsCountry(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("country") != "us" {
			t.Errorf("expected default country us, got %q", q.Get("country"))
		}
		if q.Has("category") {
			t.Errorf("empty category must be omitted, got %q", q.Get("category"))
		}
		w.Write([]byte(`{"status": "ok", "articles": []}`))
	}))
	defer srv.Close()

	client := NewNewsAPIClient(config.NewsAPIConfig{BaseURL: srv.URL, APIKey: "secret"}, nil, nil)

	if _, err := client.TopHeadlines(context.Background(), "", "", 5); err != nil {
		t.Fatalf("top headlines: %v", err)
	}
}

func TestFetchReportsProviderErrors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status":"error","message":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewNewsAPIClient(config.NewsAPIConfig{BaseURL: srv.URL, APIKey: "secret"}, nil, nil)

	if _, err := client.Fetch(context.Background(), "energy", 2); err == nil {
		t.Fatal("expected provider error")
	}
}

func TestStripMarkup(t *testing.T) {
	t.Parallel()

	got := stripMarkup("  <div>Hello <em>world</em></div>  ")
	if got != "Hello world" {
		t.Fatalf("unexpected result: %q", got)
	}

	got = stripMarkup("Short body text [+512 chars]")
	if strings.Contains(got, "chars]") {
		t.Fatalf("truncation marker kept: %q", got)
	}
}
