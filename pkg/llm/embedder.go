package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms/ollama"
)

// EmbeddingModel is the part of an ollama client the embedder calls.
type EmbeddingModel interface {
	CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbedderConfig represents the configuration for an embedder.
type EmbedderConfig struct {
	Model   string
	BaseURL string // Ollama server URL
	// Dim is the expected vector length. Zero skips the check.
	Dim int
}

// Embedder turns artifact text into vectors for the pgvector store.
type Embedder struct {
	config EmbedderConfig
	model  EmbeddingModel
}

func applyEmbedderDefaults(config EmbedderConfig) EmbedderConfig {
	if config.Model == "" {
		config.Model = "nomic-embed-text" // Default Ollama model
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:11434" // Default Ollama URL
	}
	return config
}

func NewEmbedderWithConfig(config EmbedderConfig) (*Embedder, error) {
	config = applyEmbedderDefaults(config)

	emb, err := ollama.New(ollama.WithModel(config.Model),
		ollama.WithServerURL(config.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	return &Embedder{config: config, model: emb}, nil
}

// NewEmbedderWithModel wraps any embedding model.
func NewEmbedderWithModel(config EmbedderConfig, model EmbeddingModel) *Embedder {
	return &Embedder{config: applyEmbedderDefaults(config), model: model}
}

func NewEmbedder() (*Embedder, error) {
	return NewEmbedderWithConfig(EmbedderConfig{Dim: 768})
}

func (e *Embedder) Config() EmbedderConfig { return e.config }

// CreateEmbedding returns one vector per text.
func (e *Embedder) CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vectors, err := e.model.CreateEmbedding(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: got %d, want %d", len(vectors), len(texts))
	}
	if e.config.Dim > 0 {
		for i, v := range vectors {
			if len(v) != e.config.Dim {
				return nil, fmt.Errorf("embedding %d has dimension %d, want %d", i, len(v), e.config.Dim)
			}
		}
	}
	return vectors, nil
}

// EmbedQuery embeds a single search query.
func (e *Embedder) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	vectors, err := e.CreateEmbedding(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}
