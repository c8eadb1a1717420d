package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Backend is an encyclopedia lookup: ranked title search plus per-title
// summaries.
type Backend interface {
	Search(ctx context.Context, query string) ([]string, error)
	Summary(ctx context.Context, title string) (Excerpt, error)
}

const (
	defaultWikipediaAPIURL     = "https://en.wikipedia.org/w/api.php"
	defaultWikipediaSummaryURL = "https://en.wikipedia.org/api/rest_v1/page/summary"
)

// WikipediaBackend implements Backend over the MediaWiki opensearch API and
// the REST page-summary endpoint.
type WikipediaBackend struct {
	apiURL     string
	summaryURL string
	client     *http.Client
}

// NewWikipediaBackend creates a Wikipedia backend. Empty URLs select the
// public English Wikipedia endpoints.
func NewWikipediaBackend(apiURL, summaryURL string) *WikipediaBackend {
	if strings.TrimSpace(apiURL) == "" {
		apiURL = defaultWikipediaAPIURL
	}
	if strings.TrimSpace(summaryURL) == "" {
		summaryURL = defaultWikipediaSummaryURL
	}
	return &WikipediaBackend{
		apiURL:     apiURL,
		summaryURL: strings.TrimRight(summaryURL, "/"),
		client:     &http.Client{Timeout: 15 * time.Second},
	}
}

// Search runs an opensearch query and returns the ranked page titles.
func (b *WikipediaBackend) Search(ctx context.Context, query string) ([]string, error) {
	endpoint, err := url.Parse(b.apiURL)
	if err != nil {
		return nil, fmt.Errorf("parse wikipedia url: %w", err)
	}
	q := endpoint.Query()
	q.Set("action", "opensearch")
	q.Set("search", query)
	q.Set("limit", "5")
	q.Set("format", "json")
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create wikipedia request: %w", err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wikipedia search failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wikipedia search failed with status %d", resp.StatusCode)
	}

	// Opensearch responds with a positional array:
	// [query, [titles], [descriptions], [urls]].
	var decoded []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode wikipedia search response: %w", err)
	}
	if len(decoded) < 2 {
		return nil, fmt.Errorf("wikipedia search response too short")
	}
	var titles []string
	if err := json.Unmarshal(decoded[1], &titles); err != nil {
		return nil, fmt.Errorf("decode wikipedia titles: %w", err)
	}
	return titles, nil
}

type wikipediaSummary struct {
	Title   string `json:"title"`
	Extract string `json:"extract"`
}

// Summary fetches the REST page summary for a title.
func (b *WikipediaBackend) Summary(ctx context.Context, title string) (Excerpt, error) {
	endpoint := b.summaryURL + "/" + url.PathEscape(title)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Excerpt{}, fmt.Errorf("create wikipedia summary request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return Excerpt{}, fmt.Errorf("wikipedia summary failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Excerpt{}, fmt.Errorf("wikipedia summary failed with status %d", resp.StatusCode)
	}

	var decoded wikipediaSummary
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Excerpt{}, fmt.Errorf("decode wikipedia summary: %w", err)
	}
	if strings.TrimSpace(decoded.Extract) == "" {
		return Excerpt{}, fmt.Errorf("wikipedia summary for %q is empty", title)
	}
	pageTitle := decoded.Title
	if pageTitle == "" {
		pageTitle = title
	}
	return Excerpt{Title: pageTitle, Text: decoded.Extract}, nil
}
