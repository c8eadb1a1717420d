package answer

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/luminedge/sage/internal/knowledge"
	"github.com/luminedge/sage/pkg/llm"
	"github.com/luminedge/sage/pkg/logging"
)

func testPipeline(t *testing.T, provider llm.Provider, polishProvider llm.Provider) (*Pipeline, *knowledge.FactTable) {
	t.Helper()
	facts, err := knowledge.LoadFactTable()
	if err != nil {
		t.Fatalf("LoadFactTable: %v", err)
	}
	cascade := knowledge.NewCascade(facts, nil, logging.NewLogger())
	registry := NewDefaultRegistry(RegistryConfig{Cascade: cascade})
	orchestrator := NewOrchestrator(OrchestratorConfig{Provider: provider, Registry: registry})
	pipeline := NewPipeline(PipelineConfig{
		Facts:        facts,
		Orchestrator: orchestrator,
		Polisher:     NewPolisher(polishProvider, nil, 0),
	})
	return pipeline, facts
}

func TestPipeline_IdentityShortCircuitSkipsModel(t *testing.T) {
	provider := &scriptedProvider{}
	pipeline, facts := testPipeline(t, provider, nil)

	result := pipeline.Answer(context.Background(), "  WHO ARE you? ")
	if result.Answer != facts.IdentityAnswer() {
		t.Fatalf("expected identity answer, got %q", result.Answer)
	}
	if !reflect.DeepEqual(result.Sources, []string{"Internal knowledge"}) {
		t.Fatalf("expected Internal knowledge source, got %v", result.Sources)
	}
	if provider.calls != 0 {
		t.Fatalf("expected no model calls, got %d", provider.calls)
	}
}

func TestPipeline_NoModelResponseFallsBack(t *testing.T) {
	provider := &scriptedProvider{scripts: [][]llm.Chunk{{}}}
	pipeline, _ := testPipeline(t, provider, nil)

	result := pipeline.Answer(context.Background(), "an unanswerable question")
	if result.Answer != fallbackAnswer {
		t.Fatalf("expected fallback answer, got %q", result.Answer)
	}
	if len(result.Sources) != 0 {
		t.Fatalf("expected no sources, got %v", result.Sources)
	}
}

func TestPipeline_PenicillinEndToEnd(t *testing.T) {
	provider := &scriptedProvider{
		scripts: [][]llm.Chunk{
			{{ToolCalls: []llm.ToolCall{{
				ID:        "call-1",
				Name:      "retrieve_excerpts",
				Arguments: `{"query":"penicillin discovery"}`,
			}}}},
			{{Content: "Penicillin was discovered by Alexander Fleming in 1928. [History of penicillin] He later shared the Nobel Prize. [Alexander Fleming]"}},
		},
	}
	pipeline, _ := testPipeline(t, provider, nil)

	result := pipeline.Answer(context.Background(), "Who discovered penicillin?")

	want := []string{"History of penicillin", "Alexander Fleming"}
	if !reflect.DeepEqual(result.Sources, want) {
		t.Fatalf("expected sources %v, got %v", want, result.Sources)
	}
	if strings.Contains(result.Answer, "[") {
		t.Fatalf("expected citation-free answer, got %q", result.Answer)
	}
	if !strings.Contains(result.Answer, "Fleming") || !strings.Contains(result.Answer, "1928") {
		t.Fatalf("expected the facts to survive, got %q", result.Answer)
	}

	// The tool round must have fed the curated excerpts back to the model.
	if len(provider.messages) != 2 {
		t.Fatalf("expected 2 model calls, got %d", len(provider.messages))
	}
	var toolText string
	for _, message := range provider.messages[1] {
		if message.Role == "tool" {
			toolText = message.Content
		}
	}
	if !strings.Contains(toolText, "History of penicillin") {
		t.Fatalf("expected curated excerpt in tool result, got %q", toolText)
	}
}

func TestPipeline_PolishedAnswerIsStripped(t *testing.T) {
	provider := &scriptedProvider{
		scripts: [][]llm.Chunk{
			{{Content: "Raw answer with a source. [Source A]"}},
		},
	}
	polish := &scriptedProvider{
		scripts: [][]llm.Chunk{
			{{Content: "A polished answer. [Leaky Tag]"}},
		},
	}
	pipeline, _ := testPipeline(t, provider, polish)

	result := pipeline.Answer(context.Background(), "a question")
	if result.Answer != "A polished answer." {
		t.Fatalf("expected stripped polished answer, got %q", result.Answer)
	}
	// Sources come from the raw answer, not the polished one.
	if !reflect.DeepEqual(result.Sources, []string{"Source A"}) {
		t.Fatalf("expected raw-answer sources, got %v", result.Sources)
	}
}

func TestPipeline_EmptyPolishKeepsRawAnswer(t *testing.T) {
	provider := &scriptedProvider{
		scripts: [][]llm.Chunk{
			{{Content: "Raw but useful answer. [Source A]"}},
		},
	}
	// No polish scripts: the polish call errors and the pipeline keeps the
	// stripped raw answer.
	polish := &scriptedProvider{}
	pipeline, _ := testPipeline(t, provider, polish)

	result := pipeline.Answer(context.Background(), "a question")
	if result.Answer != "Raw but useful answer." {
		t.Fatalf("expected stripped raw answer, got %q", result.Answer)
	}
	if !reflect.DeepEqual(result.Sources, []string{"Source A"}) {
		t.Fatalf("expected sources from raw answer, got %v", result.Sources)
	}
}
