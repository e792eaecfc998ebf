// Package chunker provides boundary-aware text chunking for ingestion.
package chunker

import (
	"regexp"
	"strings"

	"github.com/bookwise-ai/bookwise/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// Optimal chunk size bounds for OptimalChunkSize.
const (
	minChunkSize = 200
	maxChunkSize = 2000
)

// separators in descending priority. SplitText prefers to cut a chunk at
// the last occurrence of the highest-priority separator found inside the
// seek window.
var separators = []string{".\n", ". ", "! ", "? ", "\n\n", "\n"}

var paragraphSep = regexp.MustCompile(`\n\s*\n|\r\n\s*\r\n`)

// Chunker splits document text into overlapping chunks.
type Chunker struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a new chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Keep overlap under half the chunk size so the splitter always
	// advances past the seek window.
	if c.overlap*2 >= c.chunkSize {
		c.overlap = c.chunkSize / 4
	}

	return c
}

// ChunkSize returns the configured chunk size.
func (c *Chunker) ChunkSize() int { return c.chunkSize }

// Overlap returns the configured overlap.
func (c *Chunker) Overlap() int { return c.overlap }

// SplitText splits text into chunks of at most chunkSize characters,
// preferring to cut at sentence or paragraph boundaries. For each window
// that does not reach the end of the text, it searches backward from
// windowEnd within the last overlap characters for a boundary; if one is
// found past the search start, the chunk ends there, otherwise at the raw
// window boundary. The next chunk starts overlap characters before the cut
// so consecutive chunks share context. Chunks that trim to empty are
// dropped.
func (c *Chunker) SplitText(text string) []string {
	if len(text) <= c.chunkSize {
		return []string{text}
	}

	var chunks []string
	start := 0

	for start < len(text) {
		end := start + c.chunkSize

		if end < len(text) {
			searchStart := end - c.overlap
			sentenceEnd := -1

			for _, sep := range separators {
				if last := lastIndexWithin(text, sep, searchStart, end); last != -1 {
					sentenceEnd = last + len(sep)
					break
				}
			}

			if sentenceEnd != -1 && sentenceEnd > searchStart {
				end = sentenceEnd
			}
		} else {
			end = len(text)
		}

		if chunk := strings.TrimSpace(text[start:end]); chunk != "" {
			chunks = append(chunks, chunk)
		}

		start = end
		if c.overlap > 0 && start > c.overlap && start < len(text) {
			start -= c.overlap
		}
	}

	return chunks
}

// lastIndexWithin returns the index of the last occurrence of sep in
// text[from:to], as an offset into text, or -1.
func lastIndexWithin(text, sep string, from, to int) int {
	if from < 0 {
		from = 0
	}
	if to > len(text) {
		to = len(text)
	}
	if from >= to {
		return -1
	}
	idx := strings.LastIndex(text[from:to], sep)
	if idx == -1 {
		return -1
	}
	return from + idx
}

// ChunkText splits text with the boundary-aware splitter and attaches
// positional metadata to each chunk. The base metadata is copied into
// every chunk.
func (c *Chunker) ChunkText(text string, base domain.ChunkMetadata) []domain.Chunk {
	if text == "" {
		return nil
	}

	parts := c.SplitText(text)
	step := c.chunkSize - c.overlap

	chunks := make([]domain.Chunk, 0, len(parts))
	for i, part := range parts {
		meta := base
		meta.ChunkIndex = i
		meta.TotalChunks = len(parts)
		meta.ChunkSize = len(part)
		meta.StartPos = i * step
		meta.EndPos = min((i+1)*step+c.chunkSize, len(text))
		meta.FirstChunk = i == 0
		meta.LastChunk = i == len(parts)-1

		chunks = append(chunks, domain.Chunk{
			Content:  part,
			Metadata: meta,
		})
	}

	return chunks
}

// ChunkByParagraphs splits on blank-line separators and accumulates whole
// paragraphs into chunks, flushing whenever adding the next paragraph
// would exceed the chunk size. Paragraphs are never split mid-way, so a
// single oversized paragraph becomes an oversized chunk.
func (c *Chunker) ChunkByParagraphs(text string, base domain.ChunkMetadata) []domain.Chunk {
	paragraphs := paragraphSep.Split(text, -1)

	var chunks []domain.Chunk
	var current strings.Builder

	flush := func() {
		content := strings.TrimSpace(current.String())
		if content == "" {
			return
		}
		meta := base
		meta.ChunkIndex = len(chunks)
		meta.ChunkSize = len(content)
		chunks = append(chunks, domain.Chunk{Content: content, Metadata: meta})
		current.Reset()
	}

	for _, para := range paragraphs {
		if current.Len()+len(para) > c.chunkSize && current.Len() > 0 {
			flush()
			current.WriteString(para)
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
	}
	flush()

	for i := range chunks {
		chunks[i].Metadata.TotalChunks = len(chunks)
		chunks[i].Metadata.FirstChunk = i == 0
		chunks[i].Metadata.LastChunk = i == len(chunks)-1
	}

	return chunks
}

// DefaultSectionPattern matches markdown-style headings.
const DefaultSectionPattern = `(?m)^#+\s.*$`

// ChunkBySections splits on a heading pattern. Each section keeps its
// heading; sections larger than the chunk size fall back to the
// boundary-aware splitter with the section title carried into every
// sub-chunk's metadata.
func (c *Chunker) ChunkBySections(text, sectionPattern string, base domain.ChunkMetadata) ([]domain.Chunk, error) {
	if sectionPattern == "" {
		sectionPattern = DefaultSectionPattern
	}
	re, err := regexp.Compile(sectionPattern)
	if err != nil {
		return nil, err
	}

	headings := re.FindAllStringIndex(text, -1)
	if len(headings) == 0 {
		return c.ChunkText(text, base), nil
	}

	var chunks []domain.Chunk
	for i, loc := range headings {
		header := text[loc[0]:loc[1]]
		bodyEnd := len(text)
		if i+1 < len(headings) {
			bodyEnd = headings[i+1][0]
		}
		section := header + "\n\n" + strings.TrimSpace(text[loc[1]:bodyEnd])

		if len(section) > c.chunkSize {
			for _, sub := range c.ChunkText(section, base) {
				sub.Metadata.SectionTitle = strings.TrimSpace(header)
				chunks = append(chunks, sub)
			}
			continue
		}

		meta := base
		meta.SectionTitle = strings.TrimSpace(header)
		meta.ChunkSize = len(section)
		chunks = append(chunks, domain.Chunk{Content: section, Metadata: meta})
	}

	for i := range chunks {
		chunks[i].Metadata.ChunkIndex = i
		chunks[i].Metadata.TotalChunks = len(chunks)
		chunks[i].Metadata.FirstChunk = i == 0
		chunks[i].Metadata.LastChunk = i == len(chunks)-1
	}

	return chunks, nil
}

// OptimalChunkSize returns a chunk size that would split the text into
// roughly targetChunks pieces, clamped to [200, 2000]. A sizing heuristic
// only; callers are free to ignore it.
func (c *Chunker) OptimalChunkSize(text string, targetChunks int) int {
	if targetChunks <= 0 {
		return c.chunkSize
	}

	optimal := len(text) / targetChunks
	if optimal < minChunkSize {
		return minChunkSize
	}
	if optimal > maxChunkSize {
		return maxChunkSize
	}
	return optimal
}
