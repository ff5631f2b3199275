// Package source fetches articles from the NewsAPI provider. Without an
// API key the client serves a small deterministic sample set so the rest
// of the pipeline stays exercisable in development.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"newsintel/internal/config"
	"newsintel/internal/domain"
	"newsintel/internal/ports"
)

// NewsAPIClient implements ports.ArticleSource against the /everything
// endpoint.
type NewsAPIClient struct {
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
	httpClient *http.Client
	logger     *slog.Logger
}

var _ ports.ArticleSource = (*NewsAPIClient)(nil)

// NewNewsAPIClient wires the provider; limiter throttles outbound calls
// and may be nil in tests.
func NewNewsAPIClient(cfg config.NewsAPIConfig, limiter *rate.Limiter, logger *slog.Logger) *NewsAPIClient {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &NewsAPIClient{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		limiter:    limiter,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type newsAPIResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Content     string `json:"content"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

// Fetch returns up to pageSize articles matching the query, newest
// first. Fetching waits on the shared limiter rather than failing fast;
// there is no fallback source to degrade to.
func (c *NewsAPIClient) Fetch(ctx context.Context, query string, pageSize int) ([]domain.RawArticle, error) {
	if c.apiKey == "" {
		c.info("no provider key set, serving sample articles", "query", query)
		return sampleArticles(pageSize), nil
	}

	endpoint, err := c.buildSearchURL(query, pageSize)
	if err != nil {
		return nil, err
	}
	return c.getArticles(ctx, endpoint)
}

// TopHeadlines returns the provider's current headlines for a category
// and country, both optional.
func (c *NewsAPIClient) TopHeadlines(ctx context.Context, category, country string, pageSize int) ([]domain.RawArticle, error) {
	if c.apiKey == "" {
		c.info("no provider key set, serving sample headlines", "category", category)
		return sampleArticles(pageSize), nil
	}

	endpoint, err := c.buildHeadlinesURL(category, country, pageSize)
	if err != nil {
		return nil, err
	}
	return c.getArticles(ctx, endpoint)
}

func (c *NewsAPIClient) getArticles(ctx context.Context, endpoint string) ([]domain.RawArticle, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("wait for rate limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request articles: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("newsapi returned %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var parsed newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode articles: %w", err)
	}
	if parsed.Status != "ok" {
		return nil, fmt.Errorf("newsapi status %q: %s", parsed.Status, parsed.Message)
	}

	articles := make([]domain.RawArticle, 0, len(parsed.Articles))
	for _, a := range parsed.Articles {
		content := stripMarkup(a.Content)
		if content == "" {
			content = stripMarkup(a.Description)
		}
		if a.Title == "" && content == "" {
			continue
		}

		publishedAt := time.Time{}
		if a.PublishedAt != "" {
			if parsedAt, err := time.Parse(time.RFC3339, a.PublishedAt); err == nil {
				publishedAt = parsedAt
			}
		}

		articles = append(articles, domain.RawArticle{
			Title:       a.Title,
			Content:     content,
			Source:      a.Source.Name,
			URL:         a.URL,
			PublishedAt: publishedAt,
		})
	}
	return articles, nil
}

// Ping checks provider reachability with a minimal query.
func (c *NewsAPIClient) Ping(ctx context.Context) error {
	if c.apiKey == "" {
		return nil
	}
	_, err := c.Fetch(ctx, "news", 1)
	return err
}

func (c *NewsAPIClient) buildSearchURL(query string, pageSize int) (string, error) {
	parsed, err := url.Parse(c.baseURL + "/everything")
	if err != nil {
		return "", fmt.Errorf("invalid base url %s: %w", c.baseURL, err)
	}

	q := parsed.Query()
	q.Set("q", query)
	q.Set("pageSize", strconv.Itoa(pageSize))
	q.Set("sortBy", "publishedAt")
	q.Set("language", "en")
	parsed.RawQuery = q.Encode()
	return parsed.String(), nil
}

func (c *NewsAPIClient) buildHeadlinesURL(category, country string, pageSize int) (string, error) {
	parsed, err := url.Parse(c.baseURL + "/top-headlines")
	if err != nil {
		return "", fmt.Errorf("invalid base url %s: %w", c.baseURL, err)
	}

	q := parsed.Query()
	if category != "" {
		q.Set("category", category)
	}
	if country == "" {
		country = "us"
	}
	q.Set("country", country)
	q.Set("pageSize", strconv.Itoa(pageSize))
	parsed.RawQuery = q.Encode()
	return parsed.String(), nil
}

// stripMarkup flattens embedded HTML fragments some providers leave in
// content fields, and drops NewsAPI's "[+N chars]" truncation marker.
func stripMarkup(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if strings.Contains(s, "<") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(s)); err == nil {
			s = doc.Text()
		}
	}
	if idx := strings.LastIndex(s, "[+"); idx > 0 && strings.HasSuffix(s, "chars]") {
		s = s[:idx]
	}
	return strings.Join(strings.Fields(s), " ")
}

func (c *NewsAPIClient) info(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Info(msg, args...)
	}
}

// sampleArticles is the keyless development dataset. Deterministic so
// cache behavior is observable across repeated fetches.
func sampleArticles(pageSize int) []domain.RawArticle {
	base := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	all := []domain.RawArticle{
		{
			Title: "Tech stocks rally as quarterly earnings beat expectations",
			Content: "Major technology companies reported strong quarterly results on Tuesday. " +
				"Analysts said the results beat expectations across the sector. " +
				"Investors responded with a broad rally that lifted the index to a record close.",
			Source:      "Reuters",
			URL:         "https://example.com/articles/tech-rally",
			PublishedAt: base,
		},
		{
			Title: "Global markets slump amid renewed trade tensions",
			Content: "Stock markets fell sharply on Wednesday as trade tensions escalated. " +
				"The losses erased most of the gains from earlier in the month. " +
				"Economists warned the dispute poses a risk to global growth.",
			Source:      "BBC News",
			URL:         "https://example.com/articles/market-slump",
			PublishedAt: base.Add(-24 * time.Hour),
		},
		{
			Title: "Researchers report breakthrough in battery storage density",
			Content: "A university team announced a new electrode design that stores significantly more energy. " +
				"The design survived a thousand charge cycles in laboratory tests. " +
				"The researchers called the results promising but cautioned commercial cells remain years away.",
			Source:      "Associated Press",
			URL:         "https://example.com/articles/battery-breakthrough",
			PublishedAt: base.Add(-48 * time.Hour),
		},
		{
			Title: "SHOCKING!!! Miracle cure doctors don't want you to know",
			Content: "You won't BELIEVE this one weird trick!!! Doctors HATE it. " +
				"Click now before this is taken down!!! Share with everyone you know immediately!!!",
			Source:      "dailybuzzlive.com",
			URL:         "https://example.com/articles/miracle-cure",
			PublishedAt: base.Add(-72 * time.Hour),
		},
		{
			Title: "City council approves new transit budget",
			Content: "The council voted seven to two on Thursday to approve the transit budget. " +
				"The plan funds two new bus corridors and station accessibility upgrades. " +
				"Construction is expected to begin next spring.",
			Source:      "Local Tribune",
			URL:         "https://example.com/articles/transit-budget",
			PublishedAt: base.Add(-96 * time.Hour),
		},
	}

	if pageSize > 0 && pageSize < len(all) {
		all = all[:pageSize]
	}
	return all
}
