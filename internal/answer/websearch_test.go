package answer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/luminedge/sage/pkg/logging"
	"github.com/luminedge/sage/pkg/search"
)

type fakeSearchProvider struct {
	results []search.Result
	err     error
}

func (f *fakeSearchProvider) Search(_ context.Context, _ string, _ search.Options) ([]search.Result, error) {
	return f.results, f.err
}

func TestCustomSearch_NilProviderIsSearchError(t *testing.T) {
	tool := NewCustomSearchTool(nil, logging.NewLogger())

	if got := tool.Search(context.Background(), "anything"); got != searchErrorResult {
		t.Fatalf("expected search error result, got %q", got)
	}
}

func TestCustomSearch_ProviderFailureIsSearchError(t *testing.T) {
	tool := NewCustomSearchTool(&fakeSearchProvider{err: errors.New("offline")}, logging.NewLogger())

	if got := tool.Search(context.Background(), "anything"); got != searchErrorResult {
		t.Fatalf("expected search error result, got %q", got)
	}
}

func TestCustomSearch_NoResultsIsSearchError(t *testing.T) {
	tool := NewCustomSearchTool(&fakeSearchProvider{}, logging.NewLogger())

	if got := tool.Search(context.Background(), "anything"); got != searchErrorResult {
		t.Fatalf("expected search error result, got %q", got)
	}
}

func TestCustomSearch_FetchesFirstResultAndCitesHostname(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head><title>Go</title></head><body>
			<article><p>` + strings.Repeat("Go is a programming language designed at Google. ", 20) + `</p></article>
		</body></html>`))
	}))
	defer page.Close()

	provider := &fakeSearchProvider{
		results: []search.Result{
			{Title: "Go", URL: page.URL, Content: "engine snippet"},
		},
	}
	tool := NewCustomSearchTool(provider, logging.NewLogger())

	got := tool.Search(context.Background(), "golang")
	if !strings.Contains(got, "programming language designed at Google") {
		t.Fatalf("expected page content in result, got %q", got)
	}
	if !strings.Contains(got, "[127.0.0.1]") {
		t.Fatalf("expected hostname citation, got %q", got)
	}
}

func TestCustomSearch_FallsBackToEngineSnippetWhenFetchFails(t *testing.T) {
	provider := &fakeSearchProvider{
		results: []search.Result{
			{Title: "Dead Page", URL: "http://127.0.0.1:1/gone", Content: "the engine snippet survives"},
		},
	}
	tool := NewCustomSearchTool(provider, logging.NewLogger())

	got := tool.Search(context.Background(), "dead page")
	if !strings.Contains(got, "the engine snippet survives") {
		t.Fatalf("expected engine snippet fallback, got %q", got)
	}
	if !strings.Contains(got, "[127.0.0.1]") {
		t.Fatalf("expected hostname citation, got %q", got)
	}
}

func TestExtractReadableText_SkipsChrome(t *testing.T) {
	content := extractContent([]byte(`<html><head><title>T</title><script>var x = 1;</script></head>
		<body><nav>menu items</nav><p>Real content here.</p><footer>footer text</footer></body></html>`), "http://example.com/")

	if !strings.Contains(content, "Real content here.") {
		t.Fatalf("expected body text, got %q", content)
	}
	if strings.Contains(content, "menu items") || strings.Contains(content, "var x") {
		t.Fatalf("expected nav and script stripped, got %q", content)
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := truncateRunes("hello", 10); got != "hello" {
		t.Fatalf("expected unchanged, got %q", got)
	}
	got := truncateRunes("hello world", 5)
	if len([]rune(got)) != 5 || !strings.HasSuffix(got, "…") {
		t.Fatalf("expected 5-rune truncation ending in ellipsis, got %q", got)
	}
}
