package answer

import (
	"github.com/luminedge/sage/internal/knowledge"
	"github.com/luminedge/sage/pkg/llm"
	"github.com/luminedge/sage/pkg/logging"
)

// RegistryConfig wires the dependencies of the default tool set.
type RegistryConfig struct {
	Cascade    *knowledge.Cascade
	SearchTool *CustomSearchTool
	// SnippetProvider, when set, makes generate_code_snippet produce code
	// directly on the utility model instead of delegating back to the
	// reasoning model.
	SnippetProvider llm.Provider
	Logger          logging.Logger
}

// NewDefaultRegistry builds the full tool dispatch table in priority order.
func NewDefaultRegistry(cfg RegistryConfig) *Registry {
	registry := NewRegistry(cfg.Logger)
	registry.Register(retrieveExcerptsDefinition(), RetrieveExcerptsHandler(cfg.Cascade))
	registry.Register(calculateDefinition(), CalculateHandler())
	registry.Register(codeSnippetDefinition(), CodeSnippetHandler(cfg.SnippetProvider))
	registry.Register(weatherDefinition(), WeatherHandler())
	registry.Register(videoSearchDefinition(), VideoSearchHandler())
	registry.Register(imageDefinition(), ImageHandler())
	if cfg.SearchTool != nil {
		registry.Register(customSearchDefinition(), cfg.SearchTool.Handler())
	}
	return registry
}
