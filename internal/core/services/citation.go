package services

import (
	"fmt"
	"strings"

	"github.com/bookwise-ai/bookwise/internal/core/domain"
)

// Citation contexts select the formatting style. search_result citations
// lead with the author, explanation and summary citations lead with the
// work itself.
const (
	CitationContextSearchResult = "search_result"
	CitationContextExplanation  = "explanation"
	CitationContextSummary      = "summary"
)

// CitationService formats source attributions for retrieved chunks.
// Citations are built from whatever metadata is present; absent fields
// are omitted rather than replaced with placeholders, so a book with no
// recorded year never cites as "n.d.".
type CitationService struct{}

// NewCitationService creates a new citation service.
func NewCitationService() *CitationService {
	return &CitationService{}
}

// GenerateCitation formats a citation for one chunk in a given context.
// Unknown contexts fall back to the general format.
func (c *CitationService) GenerateCitation(
	meta domain.ChunkMetadata, info domain.BookInfo, context string,
) string {
	switch context {
	case CitationContextSearchResult:
		return c.searchCitation(meta, info)
	case CitationContextExplanation:
		return c.explanationCitation(meta, info)
	case CitationContextSummary:
		return c.summaryCitation(meta, info)
	default:
		return c.generalCitation(meta, info)
	}
}

// searchCitation leads with "Author (Year)" and closes with the book title.
func (c *CitationService) searchCitation(meta domain.ChunkMetadata, info domain.BookInfo) string {
	var parts []string

	if head := authorYear(info); head != "" {
		parts = append(parts, head)
	}
	if meta.Chapter != "" {
		parts = append(parts, fmt.Sprintf("Chapter %s", meta.Chapter))
	}
	if meta.SectionTitle != "" {
		parts = append(parts, fmt.Sprintf("%q", meta.SectionTitle))
	}
	if meta.PageNumber > 0 {
		parts = append(parts, fmt.Sprintf("p. %d", meta.PageNumber))
	}
	if info.Title != "" {
		parts = append(parts, fmt.Sprintf("Book: %s", info.Title))
	}

	return joinCitation(parts)
}

// explanationCitation leads with "From: Title by Author".
func (c *CitationService) explanationCitation(meta domain.ChunkMetadata, info domain.BookInfo) string {
	var parts []string

	switch {
	case info.Title != "" && info.Author != "":
		parts = append(parts, fmt.Sprintf("From: %s by %s", info.Title, info.Author))
	case info.Title != "":
		parts = append(parts, fmt.Sprintf("From: %s", info.Title))
	case info.Author != "":
		parts = append(parts, fmt.Sprintf("From: %s", info.Author))
	}
	if meta.SectionTitle != "" {
		parts = append(parts, fmt.Sprintf("Section: %q", meta.SectionTitle))
	}
	if meta.PageNumber > 0 {
		parts = append(parts, fmt.Sprintf("Page: %d", meta.PageNumber))
	}

	return joinCitation(parts)
}

// summaryCitation names only the source work and location.
func (c *CitationService) summaryCitation(meta domain.ChunkMetadata, info domain.BookInfo) string {
	var parts []string

	if info.Title != "" {
		parts = append(parts, fmt.Sprintf("Source: %s", info.Title))
	}
	if meta.SectionTitle != "" {
		parts = append(parts, fmt.Sprintf("Topic: %q", meta.SectionTitle))
	}
	if meta.PageNumber > 0 {
		parts = append(parts, fmt.Sprintf("Located at page %d", meta.PageNumber))
	}

	return joinCitation(parts)
}

// generalCitation is the fallback "Author. Title" format.
func (c *CitationService) generalCitation(meta domain.ChunkMetadata, info domain.BookInfo) string {
	var parts []string

	switch {
	case info.Author != "" && info.Title != "":
		parts = append(parts, fmt.Sprintf("%s. %s", info.Author, info.Title))
	case info.Author != "":
		parts = append(parts, info.Author)
	case info.Title != "":
		parts = append(parts, info.Title)
	}
	if meta.SectionTitle != "" {
		parts = append(parts, fmt.Sprintf("Section: %q", meta.SectionTitle))
	}
	if meta.PageNumber > 0 {
		parts = append(parts, fmt.Sprintf("Page %d", meta.PageNumber))
	}

	return joinCitation(parts)
}

// FormatMultipleCitations annotates search results with citations and a
// 1-based citation order, preserving the input ranking.
func (c *CitationService) FormatMultipleCitations(
	results []domain.SearchResult, info domain.BookInfo, context string,
) []domain.SearchResult {
	formatted := make([]domain.SearchResult, len(results))
	for i, result := range results {
		result.Citation = c.GenerateCitation(result.Metadata, info, context)
		result.CitationOrder = i + 1
		formatted[i] = result
	}
	return formatted
}

// ValidateCitationFormat is a loose sanity check that a string looks like
// a citation produced by this service.
func (c *CitationService) ValidateCitationFormat(citation string) bool {
	markers := []string{".", "From:", "Page:", "Book:"}
	for _, marker := range markers {
		if strings.Contains(citation, marker) {
			return true
		}
	}
	return len(citation) > 10
}

// authorYear builds the "Author (Year)" head, dropping whichever half is
// unknown.
func authorYear(info domain.BookInfo) string {
	switch {
	case info.Author != "" && info.Year > 0:
		return fmt.Sprintf("%s (%d)", info.Author, info.Year)
	case info.Author != "":
		return info.Author
	case info.Year > 0:
		return fmt.Sprintf("(%d)", info.Year)
	}
	return ""
}

// joinCitation joins parts with periods; no parts yields an empty citation.
func joinCitation(parts []string) string {
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, ". ") + "."
}
