// Package embedding wraps an embedding service with the soft-failure
// semantics ingestion relies on: a chunk that cannot be embedded is
// skipped, never fatal.
package embedding

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/bookwise-ai/bookwise/internal/core/domain"
	"github.com/bookwise-ai/bookwise/internal/core/ports/driven"
	"github.com/bookwise-ai/bookwise/internal/logger"
)

// Generator produces embeddings through a configured service. The service
// may be nil, in which case every generation returns nil and callers fall
// back to store-side embedding.
type Generator struct {
	service driven.EmbeddingService
}

// NewGenerator creates a generator over an embedding service.
func NewGenerator(service driven.EmbeddingService) *Generator {
	return &Generator{service: service}
}

// Configured reports whether an embedding service is available.
func (g *Generator) Configured() bool {
	return g.service != nil
}

// Generate returns the embedding for text, or nil when text is empty or
// whitespace, no service is configured, or the service fails. Failures are
// logged, not returned: batch ingestion skips bad chunks rather than
// aborting.
func (g *Generator) Generate(ctx context.Context, text string) []float32 {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if g.service == nil {
		return nil
	}

	vector, err := g.service.Embed(ctx, text)
	if err != nil {
		logger.Warn("embedding failed: %v", err)
		return nil
	}
	return vector
}

// GenerateBatch embeds multiple texts, preserving input order and length.
// Each element fails independently: a nil entry marks that text as
// unembeddable. The service's batch call is tried first; on batch failure
// every text is retried individually.
func (g *Generator) GenerateBatch(ctx context.Context, texts []string) [][]float32 {
	results := make([][]float32, len(texts))
	if g.service == nil {
		return results
	}

	vectors, err := g.service.EmbedBatch(ctx, texts)
	if err == nil && len(vectors) == len(texts) {
		copy(results, vectors)
		return results
	}
	if err != nil {
		logger.Warn("batch embedding failed, retrying individually: %v", err)
	}

	for i, text := range texts {
		results[i] = g.Generate(ctx, text)
	}
	return results
}

// EmbedChunks attaches embeddings to chunks, omitting any chunk whose
// embedding failed. Surviving chunks keep their original order.
func (g *Generator) EmbedChunks(ctx context.Context, chunks []domain.Chunk) []domain.Chunk {
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}

	vectors := g.GenerateBatch(ctx, texts)

	embedded := make([]domain.Chunk, 0, len(chunks))
	for i, chunk := range chunks {
		if vectors[i] == nil {
			logger.Warn("skipping chunk %d of %d: no embedding", i, len(chunks))
			continue
		}
		chunk.Embedding = vectors[i]
		embedded = append(embedded, chunk)
	}
	return embedded
}

// CosineSimilarity returns the cosine of the angle between two vectors in
// [-1, 1]. Empty or mismatched-length vectors score 0.0 rather than
// erroring; that edge case is a policy, not a failure.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0.0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Match is a ranked candidate from FindMostSimilar.
type Match struct {
	// Index is the candidate's position in the input slice.
	Index int

	// Similarity is the cosine similarity to the query.
	Similarity float64
}

// FindMostSimilar ranks candidate vectors against a query vector,
// descending by similarity. Ties keep the candidates' original order.
func FindMostSimilar(query []float32, candidates [][]float32) []Match {
	matches := make([]Match, len(candidates))
	for i, candidate := range candidates {
		matches[i] = Match{Index: i, Similarity: CosineSimilarity(query, candidate)}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	return matches
}
