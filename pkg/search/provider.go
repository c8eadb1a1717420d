package search

import "context"

// Provider defines the interface for web search backends.
type Provider interface {
	Search(ctx context.Context, query string, opts Options) ([]Result, error)
}

// Result represents a single search result.
type Result struct {
	Title   string
	URL     string
	Content string
	Score   float64
}

// Options controls search behavior across providers.
type Options struct {
	Limit       int
	SearchDepth string
}
