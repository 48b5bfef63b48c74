package types

import (
	"context"

	"github.com/xhad/museum/internal/models"
)

// Core interfaces
type ArtifactStore interface {
	List(ctx context.Context) ([]models.Record, error)
	Get(ctx context.Context, id string) (*models.Record, error)
	Similar(ctx context.Context, id string, limit int) ([]models.Record, error)
	Search(ctx context.Context, query string, limit int) ([]models.Record, error)
	Upsert(ctx context.Context, records []models.Record) error
	Close()
}

// Similarity is implemented by stores that can score an arbitrary pair.
type Similarity interface {
	Score(ctx context.Context, a, b string) (float64, bool)
}

type AdminStore interface {
	List(ctx context.Context) ([]models.AdminArtifact, error)
	Get(ctx context.Context, id string) (*models.AdminArtifact, error)
	GetByArtifactID(ctx context.Context, artifactID string) (*models.AdminArtifact, error)
	Create(ctx context.Context, a models.AdminArtifact) (*models.AdminArtifact, error)
	Update(ctx context.Context, id string, in models.AdminInput) (*models.AdminArtifact, error)
	Delete(ctx context.Context, id string) (*models.AdminArtifact, error)
	Count(ctx context.Context) (int, error)
	Close()
}

type Embedder interface {
	CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error)
}

type Explainer interface {
	Explain(ctx context.Context, rec models.Record) (text string, source string)
	CompareNarrative(ctx context.Context, a, b models.Record) (text string, source string)
	Ask(ctx context.Context, question string, docs []models.Record) (string, error)
	AskStream(ctx context.Context, question string, docs []models.Record) (<-chan models.StreamChunk, error)
}

type ExplanationCache interface {
	Get(ctx context.Context, artifactID string) (string, bool)
	Set(ctx context.Context, artifactID, explanation string) error
	Clear(ctx context.Context, artifactID string) error
	Stats(ctx context.Context) (CacheStats, error)
}

type CacheStats struct {
	TotalCached     int    `json:"total_cached"`
	TotalCharacters int    `json:"total_characters"`
	CacheFile       string `json:"cache_file"`
	FileExists      bool   `json:"file_exists"`
}
