package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xhad/museum/internal/models"
	"github.com/xhad/museum/internal/types"
	"github.com/xhad/museum/pkg/catalog"
	"github.com/xhad/museum/pkg/store"
)

var (
	_ types.ArtifactStore = (*store.MemoryStore)(nil)
	_ types.Similarity    = (*store.MemoryStore)(nil)
	_ types.ArtifactStore = (*store.VectorStore)(nil)
	_ types.Similarity    = (*store.VectorStore)(nil)
	_ types.AdminStore    = (*store.MemoryAdminStore)(nil)
	_ types.AdminStore    = (*store.AdminPGStore)(nil)
)

func TestNextArtifactID(t *testing.T) {
	tests := []struct {
		last string
		want string
	}{
		{"", "ART001"},
		{"ART001", "ART002"},
		{"ART009", "ART010"},
		{"ART999", "ART1000"},
		{"legacy-7", "ART001"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, store.NextArtifactID(tt.last), tt.last)
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	records := catalog.Default().Records()
	ms := store.NewMemoryStore(records)

	all, err := ms.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(records))
	assert.Equal(t, "A001", all[0].ID)

	got, err := ms.Get(ctx, "A003")
	require.NoError(t, err)
	assert.Equal(t, "A003", got.ID)
	assert.Nil(t, got.SimilarityScore)

	_, err = ms.Get(ctx, "Z999")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMemoryStoreSimilar(t *testing.T) {
	ctx := context.Background()
	ms := store.NewMemoryStore(catalog.Default().Records())

	similar, err := ms.Similar(ctx, "A003", 3)
	require.NoError(t, err)
	require.Len(t, similar, 3)
	for i, r := range similar {
		assert.NotEqual(t, "A003", r.ID)
		require.NotNil(t, r.SimilarityScore)
		assert.GreaterOrEqual(t, *r.SimilarityScore, 0.0)
		assert.LessOrEqual(t, *r.SimilarityScore, 1.0)
		if i > 0 {
			assert.LessOrEqual(t, *r.SimilarityScore, *similar[i-1].SimilarityScore)
		}
	}

	_, err = ms.Similar(ctx, "Z999", 3)
	assert.ErrorIs(t, err, store.ErrNotFound)

	score, ok := ms.Score(ctx, "A003", similar[0].ID)
	require.True(t, ok)
	assert.InDelta(t, *similar[0].SimilarityScore, score, 1e-9)

	_, ok = ms.Score(ctx, "A003", "Z999")
	assert.False(t, ok)
}

func TestMemoryStoreUpsertReindexes(t *testing.T) {
	ctx := context.Background()
	ms := store.NewMemoryStore(nil)

	results, err := ms.Search(ctx, "lacquer", 5)
	require.NoError(t, err)
	assert.Empty(t, results)

	require.NoError(t, ms.Upsert(ctx, []models.Record{
		{ID: "X1", Name: "Lacquer box", Category: "Container", Materials: "Wood and lacquer"},
		{ID: "X2", Name: "Stone lamp", Category: "Lamp", Materials: "Granite"},
	}))

	results, err = ms.Search(ctx, "lacquer", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "X1", results[0].ID)
}
