package answer

import (
	"context"
	"strings"
	"testing"

	"github.com/luminedge/sage/internal/knowledge"
	"github.com/luminedge/sage/pkg/llm"
	"github.com/luminedge/sage/pkg/logging"
)

func TestRegistry_UnknownToolIsTextual(t *testing.T) {
	registry := NewRegistry(nil)

	result := registry.Execute(context.Background(), llm.ToolCall{Name: "nope"})
	if result != "Tool nope is not available." {
		t.Fatalf("unexpected result %q", result)
	}
}

func TestRegistry_DefinitionsKeepRegistrationOrder(t *testing.T) {
	cascade := knowledge.NewCascade(mustFacts(t), nil, logging.NewLogger())
	registry := NewDefaultRegistry(RegistryConfig{
		Cascade:    cascade,
		SearchTool: NewCustomSearchTool(nil, logging.NewLogger()),
	})

	defs := registry.Definitions()
	wantOrder := []string{
		"retrieve_excerpts", "calculate", "generate_code_snippet",
		"get_weather", "search_video", "create_image", "custom_search",
	}
	if len(defs) != len(wantOrder) {
		t.Fatalf("expected %d tools, got %d", len(wantOrder), len(defs))
	}
	for i, name := range wantOrder {
		if defs[i].Name != name {
			t.Fatalf("expected tool %q at %d, got %q", name, i, defs[i].Name)
		}
	}
}

func TestRegistry_MalformedArgumentsBecomeText(t *testing.T) {
	registry := NewRegistry(nil)
	registry.Register(calculateDefinition(), CalculateHandler())

	result := registry.Execute(context.Background(), llm.ToolCall{
		Name:      "calculate",
		Arguments: "not json",
	})
	if !strings.Contains(result, "Tool calculate failed") {
		t.Fatalf("expected deterministic failure text, got %q", result)
	}
}

func mustFacts(t *testing.T) *knowledge.FactTable {
	t.Helper()
	facts, err := knowledge.LoadFactTable()
	if err != nil {
		t.Fatalf("LoadFactTable: %v", err)
	}
	return facts
}

func TestRetrieveExcerptsHandler_FormatsCitations(t *testing.T) {
	cascade := knowledge.NewCascade(mustFacts(t), nil, logging.NewLogger())
	handler := RetrieveExcerptsHandler(cascade)

	result, err := handler(context.Background(), `{"query":"the history of penicillin"}`)
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if !strings.Contains(result, "[History of penicillin]") {
		t.Fatalf("expected citation tag, got %q", result)
	}
	if !strings.Contains(result, "[Alexander Fleming]") {
		t.Fatalf("expected second citation tag, got %q", result)
	}
}

func TestRetrieveExcerptsHandler_NoMatchIsTextual(t *testing.T) {
	cascade := knowledge.NewCascade(mustFacts(t), nil, logging.NewLogger())
	handler := RetrieveExcerptsHandler(cascade)

	result, err := handler(context.Background(), `{"query":"completely unknown topic"}`)
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if result != "No relevant information found for the query." {
		t.Fatalf("unexpected result %q", result)
	}
}

func TestWeatherHandler_DeterministicMock(t *testing.T) {
	handler := WeatherHandler()

	result, err := handler(context.Background(), `{"city":"Lyon"}`)
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	want := "The weather in Lyon is sunny with a temperature of 25°C. [Simulated Weather]"
	if result != want {
		t.Fatalf("expected %q, got %q", want, result)
	}
}

func TestCodeSnippetHandler_InstructionMode(t *testing.T) {
	handler := CodeSnippetHandler(nil)

	result, err := handler(context.Background(), `{"language":"Python","request":"reverse a string"}`)
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if !strings.Contains(result, "Task: Write a code snippet in Python") {
		t.Fatalf("expected task instruction, got %q", result)
	}
	if !strings.Contains(result, "markdown block") {
		t.Fatalf("expected markdown instruction, got %q", result)
	}
}

func TestCodeSnippetHandler_DirectModeFencesOutput(t *testing.T) {
	provider := &scriptedProvider{
		scripts: [][]llm.Chunk{
			{{Content: `print("hi")`}},
		},
	}
	handler := CodeSnippetHandler(provider)

	result, err := handler(context.Background(), `{"language":"Python","request":"print hi"}`)
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if !strings.HasPrefix(result, "```python\n") || !strings.HasSuffix(result, "\n```") {
		t.Fatalf("expected fenced output, got %q", result)
	}
}

func TestVideoAndImageStubs_CarryCitationTags(t *testing.T) {
	video, err := VideoSearchHandler()(context.Background(), `{"query":"cats"}`)
	if err != nil {
		t.Fatalf("video handler: %v", err)
	}
	if !strings.Contains(video, "[Simulated Video Search]") {
		t.Fatalf("expected video tag, got %q", video)
	}

	image, err := ImageHandler()(context.Background(), `{"prompt":"a red balloon"}`)
	if err != nil {
		t.Fatalf("image handler: %v", err)
	}
	if !strings.Contains(image, "[Simulated Image Studio]") {
		t.Fatalf("expected image tag, got %q", image)
	}
}
