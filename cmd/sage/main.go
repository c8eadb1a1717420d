package main

import (
	"github.com/luminedge/sage/internal/answer"
	sageconfig "github.com/luminedge/sage/internal/config"
	"github.com/luminedge/sage/internal/knowledge"
	"github.com/luminedge/sage/pkg/config"
	"github.com/luminedge/sage/pkg/llm"
	"github.com/luminedge/sage/pkg/logging"
	"github.com/luminedge/sage/pkg/monitoring"
	"github.com/luminedge/sage/pkg/search"
	"github.com/luminedge/sage/pkg/server"
	"github.com/luminedge/sage/pkg/version"
)

func main() {
	// Setup logger
	logger := logging.NewLoggerWithService("sage")

	// Load environment variables
	config.LoadEnv(logger)

	logger.Info("Starting Sage (tool-augmented answer pipeline)")

	cfg := sageconfig.LoadConfig()
	llmConfig := llm.LoadConfig()
	utilityConfig := llm.LoadUtilityConfig()

	// Setup monitoring
	healthChecker := monitoring.NewHealthChecker("sage", version.Version)
	metricsCollector := monitoring.NewMetricsCollector("sage", version.Version, version.GitCommit)

	healthChecker.AddCheck("config", monitoring.ConfigurationHealthCheck(map[string]string{
		"LLM_PROVIDER": llmConfig.Provider,
		"LLM_MODEL":    llmConfig.Model,
	}))

	llmProvider, err := llm.NewProvider(llmConfig)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize LLM provider")
	}

	utilityProvider, err := llm.NewProvider(utilityConfig)
	if err != nil {
		logger.WithError(err).Warn("Failed to initialize utility LLM provider; fluency pass disabled")
		utilityProvider = nil
	}

	searchProvider, err := search.NewProvider(search.Config{
		Provider: cfg.SearchProvider,
		APIKey:   cfg.SearchAPIKey,
		APIURL:   cfg.SearchAPIURL,
	})
	if err != nil {
		logger.WithError(err).Warn("Failed to initialize search provider; web search disabled")
		searchProvider = nil
	}

	facts, err := knowledge.LoadFactTable()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load curated fact table")
	}
	logger.WithField("version", facts.Version).Info("Loaded curated fact table")

	backend := knowledge.NewWikipediaBackend(cfg.WikipediaAPIURL, cfg.WikipediaSummaryURL)
	cascade := knowledge.NewCascade(facts, backend, logger)

	var snippetProvider llm.Provider
	if cfg.CodeSnippetDirect {
		snippetProvider = utilityProvider
	}
	searchTool := answer.NewCustomSearchTool(searchProvider, logger)
	registry := answer.NewDefaultRegistry(answer.RegistryConfig{
		Cascade:         cascade,
		SearchTool:      searchTool,
		SnippetProvider: snippetProvider,
		Logger:          logger,
	})

	orchestrator := answer.NewOrchestrator(answer.OrchestratorConfig{
		Provider:  llmProvider,
		Registry:  registry,
		Logger:    logger,
		MaxRounds: cfg.MaxToolRounds,
	})
	polisher := answer.NewPolisher(utilityProvider, logger, cfg.PolishTimeout)
	pipeline := answer.NewPipeline(answer.PipelineConfig{
		Facts:        facts,
		Orchestrator: orchestrator,
		Polisher:     polisher,
		Logger:       logger,
		Timeout:      cfg.ReasoningTimeout,
	})

	// Setup router with unified monitoring (health/metrics only)
	router := server.SetupServiceRouter(logger, "sage", healthChecker, metricsCollector)
	handler := answer.NewHandler(pipeline, logger)
	handler.RegisterRoutes(router, cfg.APIKeys)

	// Start HTTP server with graceful shutdown
	serverConfig := server.DefaultConfig("sage", cfg.Port)
	if err := server.Start(serverConfig, router, logger); err != nil {
		logger.WithError(err).Fatal("Server startup failed")
	}
}
