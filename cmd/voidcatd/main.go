// Command voidcatd is the VoidCat Reasoning Core server: it wires the
// knowledge corpus, retrieval, LLM gateway, Context7 engine, sequential
// thinking engine, task/memory store, and MCP/HTTP transports together and
// serves either or both depending on the flags given.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/voidcat-ai/reasoning-core/internal/config"
	"github.com/voidcat-ai/reasoning-core/internal/context7"
	"github.com/voidcat-ai/reasoning-core/internal/httpapi"
	"github.com/voidcat-ai/reasoning-core/internal/knowledge"
	"github.com/voidcat-ai/reasoning-core/internal/llm"
	"github.com/voidcat-ai/reasoning-core/internal/logging"
	"github.com/voidcat-ai/reasoning-core/internal/mcpserver"
	"github.com/voidcat-ai/reasoning-core/internal/rag"
	"github.com/voidcat-ai/reasoning-core/internal/retrieval"
	"github.com/voidcat-ai/reasoning-core/internal/taskmem"
	"github.com/voidcat-ai/reasoning-core/internal/thinking"
)

// contextTokenBudget bounds the total snippet size Context7 assembles per
// query. No CLI/env knob yet; revisit if a deployment needs it tunable.
const contextTokenBudget = 4000

const diagnosticsInterval = 30 * time.Second

// Exit codes per the CLI surface: 0 clean shutdown, 2 bad config, 3
// knowledge-load failure, 4 LLM not configured, 1 otherwise.
const (
	exitOK              = 0
	exitRuntimeError    = 1
	exitBadConfig       = 2
	exitKnowledgeLoad   = 3
	exitLLMUnconfigured = 4
)

func main() {
	os.Exit(run())
}

func run() int {
	stdioFlag := flag.Bool("stdio", false, "serve MCP over stdio")
	httpAddr := flag.String("http", "", "serve HTTP gateway on HOST:PORT")
	knowledgeDir := flag.String("knowledge-dir", "", "override the knowledge corpus directory")
	model := flag.String("model", "", "override the configured LLM model")
	configPath := flag.String("config", "", "path to a .env file (default: ./.env if present)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "voidcatd: bad config: %v\n", err)
		return exitBadConfig
	}

	if *knowledgeDir != "" {
		cfg.KnowledgeDir = *knowledgeDir
	}
	if *model != "" {
		cfg.LLMModel = *model
	}
	if *httpAddr != "" {
		cfg.HTTPAddr = *httpAddr
	}
	switch {
	case *stdioFlag && *httpAddr != "":
		cfg.Mode = "both"
	case *stdioFlag:
		cfg.Mode = "stdio"
	case *httpAddr != "":
		cfg.Mode = "http"
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "voidcatd: bad config: %v\n", err)
		return exitBadConfig
	}

	logger, err := logging.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "voidcatd: failed to create logger: %v\n", err)
		return exitRuntimeError
	}
	defer logger.Sync()

	logger.Info("starting voidcat reasoning core", zap.String("mode", cfg.Mode))

	corpus := knowledge.NewCorpus(knowledge.DefaultConfig(), logging.ForComponent(logger, "knowledge"))
	if err := corpus.Load(cfg.KnowledgeDir); err != nil {
		logger.Error("failed to load knowledge corpus", zap.String("dir", cfg.KnowledgeDir), zap.Error(err))
		return exitKnowledgeLoad
	}
	logger.Info("knowledge corpus loaded", zap.Int("documents", corpus.Size()), zap.String("dir", cfg.KnowledgeDir))

	if err := cfg.RequireLLMKey(); err != nil {
		logger.Error("LLM not configured", zap.Error(err))
		return exitLLMUnconfigured
	}

	gateway, err := llm.New(llm.Config{
		Provider:    cfg.LLMProvider,
		APIKey:      cfg.LLMAPIKey,
		BaseURL:     cfg.LLMBaseURL,
		Model:       cfg.LLMModel,
		Temperature: cfg.LLMTemperature,
		Retry:       llm.RetryPolicy{MaxAttempts: cfg.LLMMaxRetries, BaseDelay: 250 * time.Millisecond, MaxDelay: 8 * time.Second},
	})
	if err != nil {
		logger.Error("failed to construct LLM gateway", zap.String("provider", cfg.LLMProvider), zap.Error(err))
		return exitLLMUnconfigured
	}

	retriever := retrieval.New(corpus)
	c7 := context7.New(retriever, corpus, context7.DefaultWeights(), contextTokenBudget, logging.ForComponent(logger, "context7"))
	thinkingEngine := thinking.New(gateway, thinking.DefaultConfig(), logging.ForComponent(logger, "thinking"))
	coordinator := rag.New(gateway, retriever, c7, thinkingEngine, logging.ForComponent(logger, "rag"))
	coordinator.StartDiagnosticsTimer(context.Background(), diagnosticsInterval)
	defer coordinator.Stop()

	store, err := taskmem.Open(cfg.DataDir)
	if err != nil {
		logger.Error("failed to open task/memory store", zap.String("dir", cfg.DataDir), zap.Error(err))
		return exitRuntimeError
	}

	mcpSrv, err := mcpserver.New(mcpserver.Config{
		ConcurrencyCap: cfg.MaxQueryConcurrency,
		Coordinator:    coordinator,
		Store:          store,
		Logger:         logging.ForComponent(logger, "mcpserver"),
	})
	if err != nil {
		logger.Error("failed to configure MCP server", zap.Error(err))
		return exitRuntimeError
	}

	httpSrv := httpapi.New(httpapi.Config{
		Addr:               cfg.HTTPAddr,
		Coordinator:        coordinator,
		Store:              store,
		Logger:             logging.ForComponent(logger, "httpapi"),
		MaxConcurrentQuery: cfg.MaxQueryConcurrency,
	})

	ctx, stop := setupSignalHandler()
	defer stop()

	var wg sync.WaitGroup
	runtimeErr := false

	runMCP := func() {
		transport, closeTransport, err := mcpserver.NewStdioTransport(logging.ForComponent(logger, "mcpserver"))
		if err != nil {
			logger.Error("failed to set up stdio transport", zap.Error(err))
			runtimeErr = true
			return
		}
		defer closeTransport()
		if err := mcpSrv.Run(ctx, transport); err != nil {
			logger.Error("mcp server error", zap.Error(err))
			runtimeErr = true
		}
	}

	switch cfg.Mode {
	case "http":
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := httpSrv.Start(ctx); err != nil {
				logger.Error("http gateway error", zap.Error(err))
				runtimeErr = true
			}
		}()

	case "stdio":
		wg.Add(1)
		go func() {
			defer wg.Done()
			runMCP()
		}()

	case "both":
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := httpSrv.Start(ctx); err != nil {
				logger.Error("http gateway error", zap.Error(err))
				runtimeErr = true
			}
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			runMCP()
		}()
	}

	<-ctx.Done()
	logger.Info("shutdown signal received, stopping servers")
	wg.Wait()
	logger.Info("shutdown complete")

	if runtimeErr {
		return exitRuntimeError
	}
	return exitOK
}
