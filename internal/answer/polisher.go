package answer

import (
	"context"
	"fmt"
	"time"

	"github.com/luminedge/sage/pkg/llm"
	"github.com/luminedge/sage/pkg/logging"
)

const defaultPolishTimeout = 30 * time.Second

// Polisher runs the second, independent model pass that rewrites the raw
// answer into fluent prose.
type Polisher struct {
	provider llm.Provider
	logger   logging.Logger
	timeout  time.Duration
}

func NewPolisher(provider llm.Provider, logger logging.Logger, timeout time.Duration) *Polisher {
	if timeout <= 0 {
		timeout = defaultPolishTimeout
	}
	return &Polisher{
		provider: provider,
		logger:   logger,
		timeout:  timeout,
	}
}

// Polish rewrites rawAnswer for fluency. An error, timeout, or empty model
// output all return "" so the caller falls back to the raw answer; a failed
// polish never fails the request.
func (p *Polisher) Polish(ctx context.Context, question, rawAnswer string) string {
	if p == nil || p.provider == nil {
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	polished, err := llm.CompleteText(ctx, p.provider, []llm.Message{
		{Role: "system", Content: polishPrompt},
		{Role: "user", Content: fmt.Sprintf("Question: %s\n\nDraft answer:\n%s", question, rawAnswer)},
	})
	llmDuration.WithLabelValues("polish").Observe(time.Since(start).Seconds())
	if err != nil {
		llmCallsTotal.WithLabelValues("polish", "error").Inc()
		if p.logger != nil {
			p.logger.WithError(err).Warn("Fluency pass failed, keeping raw answer")
		}
		return ""
	}
	llmCallsTotal.WithLabelValues("polish", "success").Inc()
	return polished
}
