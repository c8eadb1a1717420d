package answer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/luminedge/sage/internal/knowledge"
	"github.com/luminedge/sage/pkg/llm"
)

// Tool definitions for the dispatch table. Every successful factual result
// embeds a bracketed citation tag so the extractor can attribute it later.

func retrieveExcerptsDefinition() llm.Tool {
	return llm.Tool{
		Name:        "retrieve_excerpts",
		Description: "Retrieves relevant reference excerpts for a knowledge-based query.",
		Parameters: toolParams(
			map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The search query to retrieve reference excerpts.",
				},
			},
			[]string{"query"},
		),
	}
}

type retrieveExcerptsInput struct {
	Query string `json:"query"`
}

// RetrieveExcerptsHandler formats cascade excerpts as model context. An empty
// resolution is reported as such rather than failing the call.
func RetrieveExcerptsHandler(cascade *knowledge.Cascade) ToolHandler {
	return func(ctx context.Context, arguments string) (string, error) {
		var input retrieveExcerptsInput
		if err := json.Unmarshal([]byte(arguments), &input); err != nil {
			return "", fmt.Errorf("parse retrieve_excerpts arguments: %w", err)
		}
		if strings.TrimSpace(input.Query) == "" {
			return "", errors.New("query is required")
		}

		excerpts := cascade.Resolve(ctx, input.Query)
		if len(excerpts) == 0 {
			return "No relevant information found for the query.", nil
		}

		var builder strings.Builder
		for i, excerpt := range excerpts {
			if i > 0 {
				builder.WriteString("\n\n")
			}
			fmt.Fprintf(&builder, "%s\n%s\n[%s]", excerpt.Title, excerpt.Text, excerpt.Title)
		}
		return builder.String(), nil
	}
}

func calculateDefinition() llm.Tool {
	return llm.Tool{
		Name:        "calculate",
		Description: "A simple calculator that can perform basic arithmetic operations.",
		Parameters: toolParams(
			map[string]any{
				"expression": map[string]any{
					"type":        "string",
					"description": `The mathematical expression to evaluate, e.g., "1+1".`,
				},
			},
			[]string{"expression"},
		),
	}
}

type calculateInput struct {
	Expression string `json:"expression"`
}

func CalculateHandler() ToolHandler {
	return func(_ context.Context, arguments string) (string, error) {
		var input calculateInput
		if err := json.Unmarshal([]byte(arguments), &input); err != nil {
			return "", fmt.Errorf("parse calculate arguments: %w", err)
		}
		return Calculate(input.Expression), nil
	}
}

func codeSnippetDefinition() llm.Tool {
	return llm.Tool{
		Name:        "generate_code_snippet",
		Description: "Generates a code snippet in a requested programming language.",
		Parameters: toolParams(
			map[string]any{
				"language": map[string]any{
					"type":        "string",
					"description": "The programming language for the code.",
				},
				"request": map[string]any{
					"type":        "string",
					"description": "A description of what the code should do.",
				},
			},
			[]string{"language", "request"},
		),
	}
}

type codeSnippetInput struct {
	Language string `json:"language"`
	Request  string `json:"request"`
}

// CodeSnippetHandler has two modes. Without a provider it returns a task
// instruction for the reasoning model to fulfil itself; with a provider it
// generates the snippet directly on the utility model. Either way the output
// ends up fenced and language-tagged.
func CodeSnippetHandler(provider llm.Provider) ToolHandler {
	return func(ctx context.Context, arguments string) (string, error) {
		var input codeSnippetInput
		if err := json.Unmarshal([]byte(arguments), &input); err != nil {
			return "", fmt.Errorf("parse generate_code_snippet arguments: %w", err)
		}
		if strings.TrimSpace(input.Language) == "" || strings.TrimSpace(input.Request) == "" {
			return "", errors.New("language and request are required")
		}

		if provider == nil {
			return fmt.Sprintf("Task: Write a code snippet in %s that does the following: %q. The code should be enclosed in a markdown block.", input.Language, input.Request), nil
		}

		generated, err := llm.CompleteText(ctx, provider, []llm.Message{
			{Role: "system", Content: "You generate code snippets. Respond with only the code, no prose."},
			{Role: "user", Content: fmt.Sprintf("Write a code snippet in %s that does the following: %s", input.Language, input.Request)},
		})
		if err != nil {
			return "", fmt.Errorf("generate snippet: %w", err)
		}
		return ensureFenced(generated, input.Language), nil
	}
}

func ensureFenced(code, language string) string {
	trimmed := strings.TrimSpace(code)
	if strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	return fmt.Sprintf("```%s\n%s\n```", strings.ToLower(language), trimmed)
}

func weatherDefinition() llm.Tool {
	return llm.Tool{
		Name:        "get_weather",
		Description: "Provides the current weather for a specified location.",
		Parameters: toolParams(
			map[string]any{
				"city": map[string]any{
					"type":        "string",
					"description": "The city for which to get the weather.",
				},
			},
			[]string{"city"},
		),
	}
}

type weatherInput struct {
	City string `json:"city"`
}

// WeatherHandler is a deterministic mock. A real implementation would call a
// weather API.
func WeatherHandler() ToolHandler {
	return func(_ context.Context, arguments string) (string, error) {
		var input weatherInput
		if err := json.Unmarshal([]byte(arguments), &input); err != nil {
			return "", fmt.Errorf("parse get_weather arguments: %w", err)
		}
		if strings.TrimSpace(input.City) == "" {
			return "", errors.New("city is required")
		}
		return fmt.Sprintf("The weather in %s is sunny with a temperature of 25°C. [Simulated Weather]", input.City), nil
	}
}

func videoSearchDefinition() llm.Tool {
	return llm.Tool{
		Name:        "search_video",
		Description: "Searches for a video matching the query.",
		Parameters: toolParams(
			map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The video search query.",
				},
			},
			[]string{"query"},
		),
	}
}

type videoSearchInput struct {
	Query string `json:"query"`
}

func VideoSearchHandler() ToolHandler {
	return func(_ context.Context, arguments string) (string, error) {
		var input videoSearchInput
		if err := json.Unmarshal([]byte(arguments), &input); err != nil {
			return "", fmt.Errorf("parse search_video arguments: %w", err)
		}
		if strings.TrimSpace(input.Query) == "" {
			return "", errors.New("query is required")
		}
		return fmt.Sprintf("Simulated video result for %q: a relevant video was found and would be embedded in a full deployment. [Simulated Video Search]", input.Query), nil
	}
}

func imageDefinition() llm.Tool {
	return llm.Tool{
		Name:        "create_image",
		Description: "Creates an image from a text prompt.",
		Parameters: toolParams(
			map[string]any{
				"prompt": map[string]any{
					"type":        "string",
					"description": "A description of the image to create.",
				},
			},
			[]string{"prompt"},
		),
	}
}

type imageInput struct {
	Prompt string `json:"prompt"`
}

func ImageHandler() ToolHandler {
	return func(_ context.Context, arguments string) (string, error) {
		var input imageInput
		if err := json.Unmarshal([]byte(arguments), &input); err != nil {
			return "", fmt.Errorf("parse create_image arguments: %w", err)
		}
		if strings.TrimSpace(input.Prompt) == "" {
			return "", errors.New("prompt is required")
		}
		return fmt.Sprintf("Simulated image generated for prompt %q. [Simulated Image Studio]", input.Prompt), nil
	}
}
