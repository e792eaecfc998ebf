package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bookwise-ai/bookwise/internal/core/domain"
)

func fullBookInfo() domain.BookInfo {
	return domain.BookInfo{
		ID:     "b1",
		Title:  "The Go Programming Language",
		Author: "Donovan & Kernighan",
		Year:   2015,
	}
}

func TestGenerateCitation_SearchResult(t *testing.T) {
	svc := NewCitationService()
	meta := domain.ChunkMetadata{
		Chapter:      "4",
		SectionTitle: "Slices",
		PageNumber:   84,
	}

	citation := svc.GenerateCitation(meta, fullBookInfo(), CitationContextSearchResult)

	assert.Equal(t,
		`Donovan & Kernighan (2015). Chapter 4. "Slices". p. 84. Book: The Go Programming Language.`,
		citation)
}

func TestGenerateCitation_SearchResult_MinimalMetadata(t *testing.T) {
	svc := NewCitationService()

	citation := svc.GenerateCitation(domain.ChunkMetadata{}, fullBookInfo(), CitationContextSearchResult)

	assert.Equal(t, "Donovan & Kernighan (2015). Book: The Go Programming Language.", citation)
}

func TestGenerateCitation_OmitsUnknownYear(t *testing.T) {
	svc := NewCitationService()
	info := fullBookInfo()
	info.Year = 0

	citation := svc.GenerateCitation(domain.ChunkMetadata{}, info, CitationContextSearchResult)

	assert.Equal(t, "Donovan & Kernighan. Book: The Go Programming Language.", citation)
	assert.NotContains(t, citation, "n.d.")
}

func TestGenerateCitation_Explanation(t *testing.T) {
	svc := NewCitationService()
	meta := domain.ChunkMetadata{SectionTitle: "Slices", PageNumber: 84}

	citation := svc.GenerateCitation(meta, fullBookInfo(), CitationContextExplanation)

	assert.Equal(t,
		`From: The Go Programming Language by Donovan & Kernighan. Section: "Slices". Page: 84.`,
		citation)
}

func TestGenerateCitation_Explanation_NoAuthor(t *testing.T) {
	svc := NewCitationService()
	info := fullBookInfo()
	info.Author = ""

	citation := svc.GenerateCitation(domain.ChunkMetadata{}, info, CitationContextExplanation)

	assert.Equal(t, "From: The Go Programming Language.", citation)
}

func TestGenerateCitation_Summary(t *testing.T) {
	svc := NewCitationService()
	meta := domain.ChunkMetadata{SectionTitle: "Slices", PageNumber: 84}

	citation := svc.GenerateCitation(meta, fullBookInfo(), CitationContextSummary)

	assert.Equal(t,
		`Source: The Go Programming Language. Topic: "Slices". Located at page 84.`,
		citation)
}

func TestGenerateCitation_DefaultContext(t *testing.T) {
	svc := NewCitationService()
	meta := domain.ChunkMetadata{SectionTitle: "Slices", PageNumber: 84}

	citation := svc.GenerateCitation(meta, fullBookInfo(), "something_else")

	assert.Equal(t,
		`Donovan & Kernighan. The Go Programming Language. Section: "Slices". Page 84.`,
		citation)
}

func TestGenerateCitation_NoMetadataAtAll(t *testing.T) {
	svc := NewCitationService()

	citation := svc.GenerateCitation(domain.ChunkMetadata{}, domain.BookInfo{}, CitationContextSummary)

	assert.Equal(t, "", citation)
}

func TestFormatMultipleCitations(t *testing.T) {
	svc := NewCitationService()
	results := []domain.SearchResult{
		{ID: "b1_chunk_0", Content: "first", Metadata: domain.ChunkMetadata{PageNumber: 1}},
		{ID: "b1_chunk_3", Content: "second", Metadata: domain.ChunkMetadata{PageNumber: 9}},
	}

	formatted := svc.FormatMultipleCitations(results, fullBookInfo(), CitationContextSearchResult)

	assert.Len(t, formatted, 2)
	assert.Equal(t, 1, formatted[0].CitationOrder)
	assert.Equal(t, 2, formatted[1].CitationOrder)
	assert.Contains(t, formatted[0].Citation, "p. 1")
	assert.Contains(t, formatted[1].Citation, "p. 9")

	// Input untouched
	assert.Empty(t, results[0].Citation)
	assert.Zero(t, results[0].CitationOrder)
}

func TestValidateCitationFormat(t *testing.T) {
	svc := NewCitationService()

	tests := []struct {
		name     string
		citation string
		want     bool
	}{
		{"with period", "Author. Title.", true},
		{"with from marker", "From: somewhere", true},
		{"long without markers", "a citation without any marker", true},
		{"short junk", "abc", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.ValidateCitationFormat(tt.citation))
		})
	}
}
