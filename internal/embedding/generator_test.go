package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookwise-ai/bookwise/internal/core/domain"
)

// mockEmbedder is a test double for EmbeddingService.
type mockEmbedder struct {
	vectors  map[string][]float32
	embedErr error
	batchErr error
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if v, ok := m.vectors[text]; ok {
		return v, nil
	}
	return []float32{1, 0, 0}, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int            { return 3 }
func (m *mockEmbedder) ModelName() string          { return "mock-embed" }
func (m *mockEmbedder) Ping(context.Context) error { return nil }
func (m *mockEmbedder) Close() error               { return nil }

func TestGenerate(t *testing.T) {
	g := NewGenerator(&mockEmbedder{vectors: map[string][]float32{"hello": {0, 1, 0}}})

	assert.Equal(t, []float32{0, 1, 0}, g.Generate(context.Background(), "hello"))
}

func TestGenerate_SoftFailures(t *testing.T) {
	tests := []struct {
		name string
		gen  *Generator
		text string
	}{
		{"empty text", NewGenerator(&mockEmbedder{}), ""},
		{"whitespace text", NewGenerator(&mockEmbedder{}), "   \n\t "},
		{"no service configured", NewGenerator(nil), "hello"},
		{"service error", NewGenerator(&mockEmbedder{embedErr: errors.New("down")}), "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, tt.gen.Generate(context.Background(), tt.text))
		})
	}
}

func TestGenerateBatch_PreservesOrderAndLength(t *testing.T) {
	g := NewGenerator(&mockEmbedder{vectors: map[string][]float32{
		"a": {1, 0, 0},
		"b": {0, 1, 0},
	}})

	vectors := g.GenerateBatch(context.Background(), []string{"a", "b"})
	require.Len(t, vectors, 2)
	assert.Equal(t, []float32{1, 0, 0}, vectors[0])
	assert.Equal(t, []float32{0, 1, 0}, vectors[1])
}

func TestGenerateBatch_FallsBackIndividually(t *testing.T) {
	g := NewGenerator(&mockEmbedder{batchErr: errors.New("batch unsupported")})

	vectors := g.GenerateBatch(context.Background(), []string{"a", "", "b"})
	require.Len(t, vectors, 3)
	assert.NotNil(t, vectors[0])
	assert.Nil(t, vectors[1]) // empty text stays unembeddable
	assert.NotNil(t, vectors[2])
}

func TestGenerateBatch_Unconfigured(t *testing.T) {
	g := NewGenerator(nil)

	vectors := g.GenerateBatch(context.Background(), []string{"a", "b"})
	require.Len(t, vectors, 2)
	assert.Nil(t, vectors[0])
	assert.Nil(t, vectors[1])
}

func TestEmbedChunks_OmitsFailures(t *testing.T) {
	g := NewGenerator(&mockEmbedder{})

	chunks := []domain.Chunk{
		{ID: "doc_chunk_0", Content: "first"},
		{ID: "doc_chunk_1", Content: "   "},
		{ID: "doc_chunk_2", Content: "third"},
	}

	embedded := g.EmbedChunks(context.Background(), chunks)
	require.Len(t, embedded, 2)
	assert.Equal(t, "doc_chunk_0", embedded[0].ID)
	assert.Equal(t, "doc_chunk_2", embedded[1].ID)
	for _, chunk := range embedded {
		assert.NotNil(t, chunk.Embedding)
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1.0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0.0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1.0},
		{"empty a", nil, []float32{1, 2}, 0.0},
		{"empty b", []float32{1, 2}, nil, 0.0},
		{"length mismatch", []float32{1, 2}, []float32{1, 2, 3}, 0.0},
		{"zero vector", []float32{0, 0}, []float32{1, 2}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestFindMostSimilar(t *testing.T) {
	query := []float32{1, 0}
	candidates := [][]float32{
		{0, 1},  // orthogonal
		{1, 0},  // identical
		{1, 1},  // 45 degrees
		{-1, 0}, // opposite
	}

	matches := FindMostSimilar(query, candidates)
	require.Len(t, matches, 4)
	assert.Equal(t, 1, matches[0].Index)
	assert.Equal(t, 2, matches[1].Index)
	assert.Equal(t, 0, matches[2].Index)
	assert.Equal(t, 3, matches[3].Index)
}

func TestFindMostSimilar_StableTies(t *testing.T) {
	query := []float32{1, 0}
	candidates := [][]float32{
		{2, 0}, // similarity 1.0
		{3, 0}, // similarity 1.0
		{1, 0}, // similarity 1.0
	}

	matches := FindMostSimilar(query, candidates)
	require.Len(t, matches, 3)
	assert.Equal(t, []int{0, 1, 2}, []int{matches[0].Index, matches[1].Index, matches[2].Index})
}
