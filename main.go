package main

import (
	"context"
	"os"
	"time"

	"github.com/mudler/xlog"
	"github.com/sashabaranov/go-openai"
	"github.com/satyalearn/satyarag/rag"
	"github.com/satyalearn/satyarag/rag/engine"
	"github.com/satyalearn/satyarag/rag/interfaces"
	"github.com/satyalearn/satyarag/rag/llm"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		xlog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	clientConfig := openai.DefaultConfig(cfg.OpenAIKey)
	clientConfig.BaseURL = cfg.OpenAIBaseURL
	openAIClient := openai.NewClientWithConfig(clientConfig)

	embedder := llm.NewEmbedder(openAIClient, cfg.EmbeddingsModel)

	var store interfaces.VectorStore
	switch cfg.VectorEngine {
	case "postgres":
		pg, err := engine.NewPostgresStore(context.Background(), cfg.DatabaseURL, cfg.EmbeddingDims, embedder)
		if err != nil {
			xlog.Error("Failed to create postgres store", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		store = pg
	default:
		chromem, err := engine.NewChromemStore(cfg.DBPath, openAIClient, cfg.EmbeddingsModel)
		if err != nil {
			xlog.Error("Failed to create chromem store", "error", err)
			os.Exit(1)
		}
		store = chromem
	}

	orchestrator, err := rag.NewOrchestrator(
		store,
		embedder,
		llm.NewGenerator(openAIClient, cfg.LLMModel),
		rag.WithConfig(rag.Config{
			ResultLimit:       cfg.ResultLimit,
			CharBudget:        cfg.CharBudget,
			CacheSize:         cfg.CacheSize,
			CacheTTL:          time.Duration(cfg.CacheTTLSeconds) * time.Second,
			SemanticThreshold: float32(cfg.SemanticThreshold),
		}),
	)
	if err != nil {
		xlog.Error("Failed to create orchestrator", "error", err)
		os.Exit(1)
	}

	xlog.Info("Starting API", "address", cfg.ListenAddress, "engine", cfg.VectorEngine)
	startAPI(cfg.ListenAddress, orchestrator, store)
}
