package answer

import (
	"context"
	"time"

	"github.com/luminedge/sage/internal/knowledge"
	"github.com/luminedge/sage/pkg/logging"
)

// fallbackAnswer is returned whenever the reasoning stage produces nothing
// usable. The answer field is never empty.
const fallbackAnswer = "An unexpected error occurred while generating the answer. The model did not return a valid response. Please try again."

const defaultReasoningTimeout = 60 * time.Second

const internalKnowledgeSource = "Internal knowledge"

// Result is the terminal pipeline output.
type Result struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

// Pipeline sequences the answer stages: identity short-circuit, reasoning,
// citation extraction, fluency polish. It never returns an error; every
// failure collapses to a well-formed Result.
type Pipeline struct {
	facts        *knowledge.FactTable
	orchestrator *Orchestrator
	polisher     *Polisher
	logger       logging.Logger
	timeout      time.Duration
}

type PipelineConfig struct {
	Facts        *knowledge.FactTable
	Orchestrator *Orchestrator
	Polisher     *Polisher
	Logger       logging.Logger
	// Timeout bounds the reasoning stage; expiry counts as no response.
	Timeout time.Duration
}

func NewPipeline(cfg PipelineConfig) *Pipeline {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultReasoningTimeout
	}
	return &Pipeline{
		facts:        cfg.Facts,
		orchestrator: cfg.Orchestrator,
		polisher:     cfg.Polisher,
		logger:       cfg.Logger,
		timeout:      timeout,
	}
}

// Answer runs the full pipeline for one question.
func (p *Pipeline) Answer(ctx context.Context, question string) Result {
	start := time.Now()
	defer func() {
		askDuration.Observe(time.Since(start).Seconds())
	}()

	// Identity questions bypass the model entirely so the self-description
	// is deterministic and free.
	if p.facts != nil && p.facts.IsIdentity(question) {
		askRequestsTotal.WithLabelValues("identity").Inc()
		return Result{
			Answer:  p.facts.IdentityAnswer(),
			Sources: []string{internalKnowledgeSource},
		}
	}

	reasoningCtx, cancel := context.WithTimeout(ctx, p.timeout)
	raw, err := p.orchestrator.Run(reasoningCtx, question)
	cancel()
	if err != nil {
		if p.logger != nil {
			p.logger.WithError(err).Warn("Reasoning stage produced no answer")
		}
		askRequestsTotal.WithLabelValues("fallback").Inc()
		return Result{Answer: fallbackAnswer, Sources: []string{}}
	}

	sources := ExtractCitations(raw)
	if sources == nil {
		sources = []string{}
	}

	answer := StripCitations(p.polisher.Polish(ctx, question, raw))
	if answer == "" {
		answer = StripCitations(raw)
	}
	if answer == "" {
		// The raw answer was citations only. Keep the sources but make the
		// answer explicit about the failure.
		askRequestsTotal.WithLabelValues("fallback").Inc()
		return Result{Answer: fallbackAnswer, Sources: sources}
	}

	askRequestsTotal.WithLabelValues("answered").Inc()
	return Result{Answer: answer, Sources: sources}
}
