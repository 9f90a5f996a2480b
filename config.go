package main

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all runtime settings, loaded from the environment with an
// optional .env file for local development.
type Config struct {
	ListenAddress string `env:"LISTEN_ADDRESS" envDefault:":8080"`

	OpenAIKey       string `env:"OPENAI_API_KEY"      envDefault:"sk-local"`
	OpenAIBaseURL   string `env:"OPENAI_API_BASE_URL" envDefault:"http://localhost:8081/v1"`
	EmbeddingsModel string `env:"EMBEDDINGS_MODEL"    envDefault:"granite-embedding-107m-multilingual"`
	LLMModel        string `env:"LLM_MODEL"           envDefault:"phi-2"`

	VectorEngine  string `env:"VECTOR_ENGINE"        envDefault:"chromem"`
	DBPath        string `env:"DB_PATH"              envDefault:"satya-db"`
	DatabaseURL   string `env:"DATABASE_URL"`
	EmbeddingDims int    `env:"EMBEDDING_DIMENSIONS" envDefault:"384"`

	CacheSize         int     `env:"CACHE_SIZE"               envDefault:"100"`
	CacheTTLSeconds   int     `env:"CACHE_TTL_SECONDS"        envDefault:"3600"`
	SemanticThreshold float64 `env:"SEMANTIC_CACHE_THRESHOLD" envDefault:"0.88"`
	CharBudget        int     `env:"CONTEXT_CHAR_BUDGET"      envDefault:"400"`
	ResultLimit       int     `env:"RESULT_LIMIT"             envDefault:"3"`
}

func loadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	return &cfg, nil
}
