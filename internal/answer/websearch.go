package answer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "codeberg.org/readeck/go-readability/v2"
	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"

	"github.com/luminedge/sage/pkg/llm"
	"github.com/luminedge/sage/pkg/logging"
	"github.com/luminedge/sage/pkg/search"
)

const (
	searchErrorResult   = "The web search did not return a usable result for this query. [Search Error]"
	maxSearchCandidates = 3
	maxPageBytes        = 2 << 20 // 2 MiB cap on fetched pages
	maxSnippetRuneCount = 1500
	readabilityMinWords = 50
)

func customSearchDefinition() llm.Tool {
	return llm.Tool{
		Name:        "custom_search",
		Description: "Searches the public web and returns a snippet from the best matching page.",
		Parameters: toolParams(
			map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The query to search on the web.",
				},
			},
			[]string{"query"},
		),
	}
}

type customSearchInput struct {
	Query string `json:"query"`
}

// CustomSearchTool searches the web, fetches the first organic result, and
// extracts a readable snippet. Every failure path collapses to a fixed
// textual result tagged [Search Error]; the tool never raises.
type CustomSearchTool struct {
	provider search.Provider
	client   *http.Client
	logger   logging.Logger
}

func NewCustomSearchTool(provider search.Provider, logger logging.Logger) *CustomSearchTool {
	return &CustomSearchTool{
		provider: provider,
		client:   &http.Client{Timeout: 15 * time.Second},
		logger:   logger,
	}
}

func (t *CustomSearchTool) Handler() ToolHandler {
	return func(ctx context.Context, arguments string) (string, error) {
		var input customSearchInput
		if err := json.Unmarshal([]byte(arguments), &input); err != nil {
			return "", fmt.Errorf("parse custom_search arguments: %w", err)
		}
		if strings.TrimSpace(input.Query) == "" {
			return "", errors.New("query is required")
		}
		return t.Search(ctx, input.Query), nil
	}
}

// Search is total: any failure returns the fixed error result.
func (t *CustomSearchTool) Search(ctx context.Context, query string) string {
	if t.provider == nil {
		return searchErrorResult
	}

	results, err := t.provider.Search(ctx, query, search.Options{Limit: maxSearchCandidates})
	if err != nil {
		t.logger.WithError(err).WithField("query", query).Warn("Web search failed")
		return searchErrorResult
	}
	if len(results) == 0 {
		return searchErrorResult
	}

	top := results[0]
	hostname := hostnameOf(top.URL)
	if hostname == "" {
		return searchErrorResult
	}

	content, err := t.fetchReadable(ctx, top.URL)
	if err != nil {
		t.logger.WithError(err).WithField("url", top.URL).Warn("Page fetch failed")
		// The engine's own snippet is still usable context.
		content = strings.TrimSpace(top.Content)
	}
	if content == "" {
		return searchErrorResult
	}

	snippet := truncateRunes(strings.Join(strings.Fields(content), " "), maxSnippetRuneCount)
	return fmt.Sprintf("Web result for %q from %s (%s):\n%s\n[%s]", query, top.Title, top.URL, snippet, hostname)
}

func (t *CustomSearchTool) fetchReadable(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("create page request: %w", err)
	}
	req.Header.Set("User-Agent", "sage/1.0 (+answer pipeline)")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch page: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("read page body: %w", err)
	}

	content := extractContent(data, pageURL)
	if content == "" {
		return "", errors.New("no readable content extracted")
	}
	return content, nil
}

// extractContent tries go-readability first (Mozilla's Readability
// algorithm), converts the article to markdown, and falls back to a DOM
// walker when readability produces too little text.
func extractContent(data []byte, pageURL string) string {
	parsedURL, _ := url.Parse(pageURL)
	article, err := readability.FromReader(bytes.NewReader(data), parsedURL)
	if err == nil && article.Node != nil {
		md, mdErr := htmltomarkdown.ConvertNode(article.Node)
		if mdErr == nil {
			text := normalizeContent(string(md))
			if len(strings.Fields(text)) >= readabilityMinWords {
				return text
			}
		}
		var buf bytes.Buffer
		_ = article.RenderText(&buf)
		text := normalizeContent(buf.String())
		if len(strings.Fields(text)) >= readabilityMinWords {
			return text
		}
	}

	node, parseErr := html.Parse(bytes.NewReader(data))
	if parseErr != nil {
		return ""
	}
	return extractReadableText(node)
}

func extractReadableText(node *html.Node) string {
	var builder strings.Builder

	var walker func(*html.Node)
	walker = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "script", "style", "noscript", "nav", "footer", "header", "aside", "form", "template":
				return
			case "p", "div", "section", "article", "li", "pre", "blockquote",
				"h1", "h2", "h3", "h4", "h5", "h6":
				builder.WriteString("\n\n")
			}
			if hasAttr(n, "hidden") || attrVal(n, "aria-hidden") == "true" {
				return
			}
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				builder.WriteString(text)
				builder.WriteString(" ")
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walker(child)
		}
	}
	walker(node)

	return normalizeContent(builder.String())
}

func hasAttr(n *html.Node, key string) bool {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return true
		}
	}
	return false
}

func attrVal(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func normalizeContent(content string) string {
	lines := strings.Split(content, "\n")
	var cleaned []string
	blank := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			if !blank {
				cleaned = append(cleaned, "")
				blank = true
			}
			continue
		}
		blank = false
		cleaned = append(cleaned, trimmed)
	}
	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}

func hostnameOf(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return parsed.Hostname()
}

func truncateRunes(input string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(input)
	if len(runes) <= limit {
		return input
	}
	if limit == 1 {
		return string(runes[:1])
	}
	return string(runes[:limit-1]) + "…"
}
