package answer

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/luminedge/sage/pkg/llm"
	"github.com/luminedge/sage/pkg/logging"
)

const defaultMaxToolRounds = 6

// ErrNoResponse signals that the model produced no final text within the
// round budget. The pipeline maps it to the fixed fallback answer.
var ErrNoResponse = errors.New("model returned no response")

// Orchestrator drives the multi-round reasoning loop: model call, tool
// dispatch, tool results fed back, repeated until the model answers in plain
// text or the round budget runs out.
type Orchestrator struct {
	provider  llm.Provider
	registry  *Registry
	logger    logging.Logger
	maxRounds int
}

type OrchestratorConfig struct {
	Provider  llm.Provider
	Registry  *Registry
	Logger    logging.Logger
	MaxRounds int
}

func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	maxRounds := cfg.MaxRounds
	if maxRounds <= 0 {
		maxRounds = defaultMaxToolRounds
	}
	return &Orchestrator{
		provider:  cfg.Provider,
		registry:  cfg.Registry,
		logger:    cfg.Logger,
		maxRounds: maxRounds,
	}
}

// Run answers a question and returns the raw answer text with citation tags
// still embedded. Tool execution is sequential within a request.
func (o *Orchestrator) Run(ctx context.Context, question string) (string, error) {
	if o == nil || o.provider == nil {
		return "", errors.New("llm provider is required")
	}

	messages := []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: "Question: " + question},
	}
	tools := o.registry.Definitions()

	var response strings.Builder
	for round := 0; round < o.maxRounds; round++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		llmStart := time.Now()
		stream, err := o.provider.Complete(ctx, messages, tools)
		if err != nil {
			llmCallsTotal.WithLabelValues("reasoning", "error").Inc()
			llmDuration.WithLabelValues("reasoning").Observe(time.Since(llmStart).Seconds())
			return "", err
		}

		response.Reset()
		var pendingToolCalls []llm.ToolCall
		for {
			chunk, err := stream.Recv()
			if err != nil {
				if errors.Is(err, io.EOF) {
					break
				}
				_ = stream.Close()
				llmCallsTotal.WithLabelValues("reasoning", "error").Inc()
				return "", err
			}
			if chunk.Content != "" {
				response.WriteString(chunk.Content)
			}
			if len(chunk.ToolCalls) > 0 {
				pendingToolCalls = mergeToolCalls(pendingToolCalls, chunk.ToolCalls)
			}
		}
		_ = stream.Close()
		llmCallsTotal.WithLabelValues("reasoning", "success").Inc()
		llmDuration.WithLabelValues("reasoning").Observe(time.Since(llmStart).Seconds())

		if len(pendingToolCalls) == 0 {
			break
		}

		// Append the assistant message with its tool calls so the next
		// round sees the call/result pairing it expects.
		messages = append(messages, llm.Message{
			Role:      "assistant",
			Content:   response.String(),
			ToolCalls: pendingToolCalls,
		})

		for _, call := range pendingToolCalls {
			result := o.registry.Execute(ctx, call)
			messages = append(messages, llm.Message{
				Role:       "tool",
				Content:    result,
				Name:       call.Name,
				ToolCallID: call.ID,
			})
		}

		if round == o.maxRounds-2 {
			messages = append(messages, llm.Message{
				Role:    "user",
				Content: "[System note: You have one remaining tool round. Synthesize your answer now using the context already gathered. Do not make additional tool calls unless absolutely critical.]",
			})
		}
	}

	raw := strings.TrimSpace(response.String())
	if raw == "" {
		return "", ErrNoResponse
	}
	return raw, nil
}

// mergeToolCalls folds streamed tool-call fragments into complete calls,
// keyed by call ID. Providers resend the full accumulated arguments per
// fragment, so the latest fragment wins.
func mergeToolCalls(existing, incoming []llm.ToolCall) []llm.ToolCall {
	for _, inc := range incoming {
		found := false
		for i, ex := range existing {
			if ex.ID != "" && ex.ID == inc.ID {
				existing[i].Arguments = inc.Arguments
				found = true
				break
			}
		}
		if !found {
			existing = append(existing, inc)
		}
	}
	return existing
}
