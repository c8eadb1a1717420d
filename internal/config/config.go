package config

import (
	"time"

	"github.com/luminedge/sage/pkg/config"
)

// Config stores environment configuration for Sage.
type Config struct {
	Port                string
	APIKeys             []string
	MaxToolRounds       int
	ReasoningTimeout    time.Duration
	PolishTimeout       time.Duration
	CodeSnippetDirect   bool
	WikipediaAPIURL     string
	WikipediaSummaryURL string
	SearchProvider      string
	SearchAPIKey        string
	SearchAPIURL        string
}

// LoadConfig loads the Sage configuration from environment variables.
func LoadConfig() Config {
	return Config{
		Port:                config.GetEnv("PORT", "18080"),
		APIKeys:             config.GetEnvList("SAGE_API_KEYS"),
		MaxToolRounds:       config.GetEnvInt("SAGE_MAX_TOOL_ROUNDS", 6),
		ReasoningTimeout:    config.GetEnvDuration("SAGE_LLM_TIMEOUT", 60*time.Second),
		PolishTimeout:       config.GetEnvDuration("SAGE_POLISH_TIMEOUT", 30*time.Second),
		CodeSnippetDirect:   config.GetEnvBool("SAGE_CODE_SNIPPET_DIRECT", false),
		WikipediaAPIURL:     config.GetEnv("SAGE_WIKIPEDIA_API_URL", ""),
		WikipediaSummaryURL: config.GetEnv("SAGE_WIKIPEDIA_SUMMARY_URL", ""),
		SearchProvider:      config.GetEnv("SEARCH_PROVIDER", "duckduckgo"),
		SearchAPIKey:        config.GetEnv("SEARCH_API_KEY", ""),
		SearchAPIURL:        config.GetEnv("SEARCH_API_URL", ""),
	}
}
