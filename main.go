// Command inkwell is a versioned library of rewritten web content with
// retrieval ranking that learns from user feedback.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/inkwell-labs/inkwell-cli/internal/adapters/driven/ai"
	"github.com/inkwell-labs/inkwell-cli/internal/adapters/driven/config/file"
	ollamaembed "github.com/inkwell-labs/inkwell-cli/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/inkwell-labs/inkwell-cli/internal/adapters/driven/embedding/openai"
	"github.com/inkwell-labs/inkwell-cli/internal/adapters/driven/fetcher/web"
	"github.com/inkwell-labs/inkwell-cli/internal/adapters/driven/llm/gemini"
	ollamallm "github.com/inkwell-labs/inkwell-cli/internal/adapters/driven/llm/ollama"
	"github.com/inkwell-labs/inkwell-cli/internal/adapters/driven/storage/sqlite"
	"github.com/inkwell-labs/inkwell-cli/internal/adapters/driven/vector/brute"
	"github.com/inkwell-labs/inkwell-cli/internal/adapters/driving/cli"
	"github.com/inkwell-labs/inkwell-cli/internal/core/ports/driven"
	"github.com/inkwell-labs/inkwell-cli/internal/core/services"
	"github.com/inkwell-labs/inkwell-cli/internal/logger"
)

// version is overridden at release build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	config, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	store, err := sqlite.NewStore(config.GetString("storage.data_dir"))
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	embedder := services.NewRetryingEmbedder(newEmbeddingService(config))
	defer embedder.Close()

	index := brute.NewIndex()
	library := services.NewLibraryService(store.VersionStore(), index, embedder)

	// The brute index lives in memory, so it is rebuilt from the stored
	// embeddings on every start.
	if n, err := library.RebuildIndex(ctx); err != nil {
		return fmt.Errorf("rebuilding index: %w", err)
	} else if n > 0 {
		logger.Debug("Indexed %d stored versions", n)
	}

	ranker := services.NewRanker(ctx, store.RankingModelStore())
	retrieval := services.NewRetrievalService(
		store.VersionStore(), index, embedder, store.FeedbackLedger(),
		ranker, config.GetInt("retrieval.batch_size"),
	)

	// Hot reload: pick up edits to the config file while running.
	stopWatch, err := config.Watch(func() {
		logger.SetVerbose(config.GetBool("verbose"))
		retrieval.SetBatchSize(config.GetInt("retrieval.batch_size"))
		logger.Debug("Configuration reloaded")
	})
	if err != nil {
		logger.Warn("Config hot reload unavailable: %v", err)
	} else {
		defer stopWatch()
	}

	prompts, err := file.NewPromptStore(config.GetString("prompts.dir"))
	if err != nil {
		return fmt.Errorf("loading prompts: %w", err)
	}

	var agents driven.Agents
	if llm := newLLMService(config); llm != nil {
		defer llm.Close()
		agents = ai.NewAgents(llm, prompts)
	}

	fetcher := web.NewFetcher(web.Config{
		UserAgent: config.GetString("fetcher.user_agent"),
	})
	pipeline := services.NewPipelineService(
		fetcher, agents, library, config.GetInt("pipeline.max_review_rounds"),
	)

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Library:   library,
		Retrieval: retrieval,
		Pipeline:  pipeline,
		Config:    config,
	})
	return cli.Execute()
}

// newEmbeddingService selects the embedding provider from config.
// Defaults to a local Ollama instance.
func newEmbeddingService(config driven.ConfigStore) driven.EmbeddingService {
	switch config.GetString("embedding.provider") {
	case "openai":
		svc, err := openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey: firstNonEmpty(config.GetString("embedding.api_key"), os.Getenv("OPENAI_API_KEY")),
			Model:  config.GetString("embedding.model"),
		})
		if err != nil {
			logger.Warn("OpenAI embedding unavailable (%v), falling back to Ollama", err)
			return ollamaembed.NewEmbeddingService(ollamaembed.Config{})
		}
		return svc
	default:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: config.GetString("embedding.base_url"),
			Model:   config.GetString("embedding.model"),
		})
	}
}

// newLLMService selects the LLM provider from config. Returns nil when no
// provider is usable; the pipeline then runs without AI stages.
func newLLMService(config driven.ConfigStore) driven.LLMService {
	switch config.GetString("llm.provider") {
	case "ollama":
		return ollamallm.NewLLMService(ollamallm.Config{
			BaseURL: config.GetString("llm.base_url"),
			Model:   config.GetString("llm.model"),
		})
	case "", "gemini":
		apiKey := firstNonEmpty(config.GetString("llm.api_key"), os.Getenv("GEMINI_API_KEY"))
		if apiKey == "" {
			logger.Warn("No Gemini API key configured; AI stages disabled")
			return nil
		}
		svc, err := gemini.NewLLMService(gemini.Config{
			APIKey: apiKey,
			Model:  config.GetString("llm.model"),
		})
		if err != nil {
			logger.Warn("Gemini unavailable (%v); AI stages disabled", err)
			return nil
		}
		return svc
	default:
		logger.Warn("Unknown LLM provider %q; AI stages disabled", config.GetString("llm.provider"))
		return nil
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
