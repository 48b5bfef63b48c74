package store_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xhad/museum/internal/models"
	"github.com/xhad/museum/pkg/catalog"
	"github.com/xhad/museum/pkg/store"
)

// hashEmbedder produces deterministic vectors from character counts.
type hashEmbedder struct{ dim int }

func (h hashEmbedder) CreateEmbedding(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v := make([]float32, h.dim)
		for _, r := range text {
			v[int(r)%h.dim]++
		}
		out[i] = v
	}
	return out, nil
}

func databaseURL(t *testing.T) string {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}
	return url
}

// uniqueTable keeps parallel runs from sharing rows.
func uniqueTable(prefix string) string {
	return prefix + "_" + uuid.NewString()[:8]
}

func TestVectorStore(t *testing.T) {
	ctx := context.Background()
	s, err := store.NewWithConfig(ctx, store.VectorStoreConfig{
		ConnString: databaseURL(t),
		TableName:  uniqueTable("test_artifacts"),
		VectorDim:  16,
		BatchSize:  4,
		Embedder:   hashEmbedder{dim: 16},
	})
	require.NoError(t, err)
	defer s.Close()

	records := catalog.Default().Records()
	require.NoError(t, s.Upsert(ctx, records))

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(records))

	got, err := s.Get(ctx, "A001")
	require.NoError(t, err)
	assert.Equal(t, records[0].Name, got.Name)

	_, err = s.Get(ctx, "Z999")
	assert.ErrorIs(t, err, store.ErrNotFound)

	similar, err := s.Similar(ctx, "A001", 3)
	require.NoError(t, err)
	require.Len(t, similar, 3)
	for _, r := range similar {
		assert.NotEqual(t, "A001", r.ID)
		require.NotNil(t, r.SimilarityScore)
		assert.LessOrEqual(t, *r.SimilarityScore, 1.0)
	}

	score, ok := s.Score(ctx, "A001", similar[0].ID)
	require.True(t, ok)
	assert.InDelta(t, *similar[0].SimilarityScore, score, 1e-6)

	found, err := s.Search(ctx, records[2].Name, 1)
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestVectorStoreWithoutEmbedder(t *testing.T) {
	ctx := context.Background()
	s, err := store.NewWithConfig(ctx, store.VectorStoreConfig{
		ConnString: databaseURL(t),
		TableName:  uniqueTable("test_plain"),
		VectorDim:  16,
	})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Upsert(ctx, []models.Record{{ID: "X1", Name: "Box", Category: "Container", Origin: "Kandy"}}))

	similar, err := s.Similar(ctx, "X1", 5)
	require.NoError(t, err)
	assert.Empty(t, similar)

	_, ok := s.Score(ctx, "X1", "X1")
	assert.False(t, ok)
}

func TestAdminPGStore(t *testing.T) {
	s, err := store.NewAdminStoreWithConfig(context.Background(), store.AdminStoreConfig{
		ConnString: databaseURL(t),
		TableName:  uniqueTable("test_admin"),
	})
	require.NoError(t, err)
	defer s.Close()

	exerciseAdminStore(t, s)
}
