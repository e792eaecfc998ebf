package domain

import (
	"fmt"
	"strings"
	"time"
)

// chunkIDSeparator joins a document ID with a chunk ordinal.
// All chunk IDs for one source document share the `{docID}_chunk_` prefix;
// cascade deletion relies on this to find a document's chunks.
const chunkIDSeparator = "_chunk_"

// Document represents an uploaded source file belonging to a book.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// BookID links to the owning Book (collection).
	BookID string

	// FilePath is the location of the raw bytes on disk.
	FilePath string

	// Format is the source format tag: pdf, docx, epub or txt.
	Format string

	// Metadata holds extracted file metadata.
	Metadata FileMetadata

	// CreatedAt is when the document was first registered.
	CreatedAt time.Time

	// UpdatedAt is when the document was last updated.
	UpdatedAt time.Time
}

// FileMetadata is extracted from a source file. FileName, FileSize,
// FileType and LastModified are always present; the rest are best-effort
// per format and left zero when unavailable.
type FileMetadata struct {
	FileName     string
	FileSize     int64
	FileType     string
	LastModified time.Time

	Title     string
	Author    string
	Subject   string
	PageCount int
}

// Chunk is a bounded span of text derived from a document, the atomic
// unit of embedding and retrieval. Chunks are immutable once stored.
type Chunk struct {
	// ID is unique within the vector store: `{docID}_chunk_{n}`.
	ID string

	// DocumentID links to the source document.
	DocumentID string

	// Content is the chunk text.
	Content string

	// Embedding is the vector representation, nil until embedded.
	Embedding []float32

	// Metadata describes the chunk's position within the source.
	Metadata ChunkMetadata
}

// ChunkMetadata is the typed per-chunk record threaded through ingestion,
// search and citation. It replaces free-form metadata maps so that field
// names are checked at compile time.
type ChunkMetadata struct {
	// File-level fields, copied from the source document.
	FileName string
	FileType string
	FileSize int64
	Title    string
	Author   string

	// ChunkIndex is the ordinal position within the document.
	ChunkIndex int

	// TotalChunks is the number of chunks the document produced.
	TotalChunks int

	// ChunkSize is the chunk length in characters.
	ChunkSize int

	// StartPos and EndPos are character offsets into the extracted text.
	StartPos int
	EndPos   int

	// PageNumber is the source page, zero when unknown.
	PageNumber int

	// SectionTitle is the heading of the enclosing section, if any.
	SectionTitle string

	// Chapter is the enclosing chapter label, if any.
	Chapter string

	// FirstChunk and LastChunk flag the document boundaries.
	FirstChunk bool
	LastChunk  bool
}

// ChunkID builds the vector store ID for chunk n of a document.
func ChunkID(docID string, n int) string {
	return fmt.Sprintf("%s%s%d", docID, chunkIDSeparator, n)
}

// ChunkIDPrefix returns the prefix shared by all chunk IDs of a document.
func ChunkIDPrefix(docID string) string {
	return docID + chunkIDSeparator
}

// BelongsTo reports whether a chunk ID was derived from the given document.
func BelongsTo(chunkID, docID string) bool {
	return strings.HasPrefix(chunkID, ChunkIDPrefix(docID))
}
