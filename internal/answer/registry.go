package answer

import (
	"context"
	"fmt"
	"time"

	"github.com/luminedge/sage/pkg/llm"
	"github.com/luminedge/sage/pkg/logging"
)

// ToolHandler executes one tool call. Arguments arrive as the raw JSON string
// issued by the model; each handler unmarshals and validates its own input.
// Handlers return textual results for the model, never user-facing errors.
type ToolHandler func(ctx context.Context, arguments string) (string, error)

type toolEntry struct {
	definition llm.Tool
	handler    ToolHandler
}

// Registry is an ordered dispatch table of tools. It is populated once at
// startup and read-only afterwards.
type Registry struct {
	order   []string
	entries map[string]toolEntry
	logger  logging.Logger
}

func NewRegistry(logger logging.Logger) *Registry {
	return &Registry{
		entries: make(map[string]toolEntry),
		logger:  logger,
	}
}

// Register adds a tool. Registering the same name twice replaces the handler
// but keeps the original position.
func (r *Registry) Register(definition llm.Tool, handler ToolHandler) {
	if _, exists := r.entries[definition.Name]; !exists {
		r.order = append(r.order, definition.Name)
	}
	r.entries[definition.Name] = toolEntry{definition: definition, handler: handler}
}

// Definitions returns the tool schemas in registration order for the model
// request.
func (r *Registry) Definitions() []llm.Tool {
	defs := make([]llm.Tool, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.entries[name].definition)
	}
	return defs
}

// Execute runs a model-issued tool call and always returns a textual result.
// Unknown tools and handler failures become deterministic text for the model
// rather than errors.
func (r *Registry) Execute(ctx context.Context, call llm.ToolCall) string {
	entry, ok := r.entries[call.Name]
	if !ok {
		toolCallsTotal.WithLabelValues(call.Name, "unknown").Inc()
		return fmt.Sprintf("Tool %s is not available.", call.Name)
	}

	start := time.Now()
	result, err := entry.handler(ctx, call.Arguments)
	toolDuration.WithLabelValues(call.Name).Observe(time.Since(start).Seconds())
	if err != nil {
		toolCallsTotal.WithLabelValues(call.Name, "error").Inc()
		if r.logger != nil {
			r.logger.WithError(err).WithField("tool", call.Name).Warn("Tool execution failed")
		}
		return fmt.Sprintf("Tool %s failed: %v", call.Name, err)
	}
	toolCallsTotal.WithLabelValues(call.Name, "success").Inc()
	return result
}

func toolParams(properties map[string]any, required []string) map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}
