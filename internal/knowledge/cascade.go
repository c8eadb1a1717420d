package knowledge

import (
	"context"
	"strings"

	"github.com/luminedge/sage/pkg/logging"
)

// Cascade resolves a query against knowledge sources in fixed priority order:
// identity phrases, then the curated fact table, then the encyclopedia
// backend. Resolution never fails; sources that error contribute nothing.
type Cascade struct {
	facts   *FactTable
	backend Backend
	logger  logging.Logger
}

func NewCascade(facts *FactTable, backend Backend, logger logging.Logger) *Cascade {
	return &Cascade{
		facts:   facts,
		backend: backend,
		logger:  logger,
	}
}

// Facts exposes the curated table so callers can reuse its identity matching.
func (c *Cascade) Facts() *FactTable {
	return c.facts
}

// Resolve returns the excerpts for a query. An empty slice means no source
// had anything relevant.
func (c *Cascade) Resolve(ctx context.Context, query string) []Excerpt {
	normalized := Normalize(query)
	if normalized == "" {
		return nil
	}

	if c.facts.IsIdentity(normalized) {
		return []Excerpt{c.facts.IdentityExcerpt()}
	}

	if excerpts := c.facts.Match(normalized); len(excerpts) > 0 {
		return excerpts
	}

	if c.backend == nil {
		return nil
	}

	titles, err := c.backend.Search(ctx, query)
	if err != nil {
		c.logger.WithError(err).WithField("query", query).Warn("Encyclopedia search failed")
		return nil
	}
	if len(titles) == 0 {
		return nil
	}

	top := strings.TrimSpace(titles[0])
	if top == "" {
		return nil
	}
	excerpt, err := c.backend.Summary(ctx, top)
	if err != nil {
		c.logger.WithError(err).WithField("title", top).Warn("Encyclopedia summary failed")
		return nil
	}
	return []Excerpt{excerpt}
}
