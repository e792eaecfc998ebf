package domain

import "unicode/utf8"

// DefaultSearchResults is the number of chunks retrieved per query when
// the caller does not specify a limit.
const DefaultSearchResults = 5

// SearchResult is a single retrieval hit. It is constructed per query and
// never persisted.
type SearchResult struct {
	// ID is the matched chunk ID.
	ID string

	// Content is the chunk text.
	Content string

	// Distance is the cosine distance reported by the vector store
	// (lower is better).
	Distance float64

	// Metadata describes the chunk's position within its source.
	Metadata ChunkMetadata

	// Citation is a formatted source attribution, set by the citation
	// service when requested.
	Citation string

	// CitationOrder is the 1-based position in a cited result list.
	CitationOrder int
}

// Relevance converts the stored distance to a similarity score.
// This assumes cosine distance bounded in [0, 2]; with an unbounded
// metric the result can go negative, so callers must not feed Euclidean
// distances through here.
func (r SearchResult) Relevance() float64 {
	return 1 - r.Distance
}

// Answer is the result of a RAG query with source attribution.
type Answer struct {
	// Response is the generated answer text, or a fallback sentinel.
	Response string

	// Sources lists the retrieved chunks that informed the response.
	Sources []Source
}

// Source summarises one retrieved chunk for attribution.
type Source struct {
	ID           string
	Distance     float64
	FileName     string
	ChunkIndex   int
	PageNumber   int
	SectionTitle string

	// ContentPreview is the first 200 characters of the chunk.
	ContentPreview string
}

// PreviewLimit is the maximum length of a source content preview.
const PreviewLimit = 200

// Preview truncates content to at most PreviewLimit bytes with an
// ellipsis, cutting at a rune boundary so multi-byte characters are never
// split.
func Preview(content string) string {
	if len(content) <= PreviewLimit {
		return content
	}
	cut := PreviewLimit
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return content[:cut] + "..."
}
