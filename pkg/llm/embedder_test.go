package llm_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xhad/museum/internal/types"
	"github.com/xhad/museum/pkg/llm"
)

var _ types.Embedder = (*llm.Embedder)(nil)

type fakeEmbedding struct {
	dim int
	err error
}

func (f fakeEmbedding) CreateEmbedding(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v := make([]float32, f.dim)
		v[0] = float32(len(text))
		out[i] = v
	}
	return out, nil
}

func TestNewEmbedderWithConfig(t *testing.T) {
	emb, err := llm.NewEmbedderWithConfig(llm.EmbedderConfig{BaseURL: "http://localhost:11434"})
	require.NoError(t, err)
	assert.Equal(t, "nomic-embed-text", emb.Config().Model)
}

func TestCreateEmbedding(t *testing.T) {
	emb := llm.NewEmbedderWithModel(llm.EmbedderConfig{Dim: 4}, fakeEmbedding{dim: 4})

	vectors, err := emb.CreateEmbedding(context.Background(), []string{"wood", "granite"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, float32(7), vectors[1][0])

	query, err := emb.EmbedQuery(context.Background(), "moonstone")
	require.NoError(t, err)
	assert.Len(t, query, 4)

	empty, err := emb.CreateEmbedding(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestCreateEmbeddingErrors(t *testing.T) {
	wrongDim := llm.NewEmbedderWithModel(llm.EmbedderConfig{Dim: 768}, fakeEmbedding{dim: 4})
	_, err := wrongDim.CreateEmbedding(context.Background(), []string{"x"})
	assert.ErrorContains(t, err, "dimension 4")

	failing := llm.NewEmbedderWithModel(llm.EmbedderConfig{}, fakeEmbedding{err: errors.New("offline")})
	_, err = failing.EmbedQuery(context.Background(), "x")
	assert.ErrorContains(t, err, "offline")
}
