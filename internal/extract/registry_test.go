package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookwise-ai/bookwise/internal/core/domain"
)

// fakeExtractor is a test double for one format.
type fakeExtractor struct {
	ext     string
	text    string
	meta    domain.FileMetadata
	err     error
	metaErr error
}

func (f *fakeExtractor) Supports(ext string) bool {
	return ext == f.ext
}

func (f *fakeExtractor) Extract(_ context.Context, _ string) (string, error) {
	return f.text, f.err
}

func (f *fakeExtractor) Metadata(_ context.Context, _ string) (domain.FileMetadata, error) {
	return f.meta, f.metaErr
}

func TestRegistry_ForFile(t *testing.T) {
	txt := &fakeExtractor{ext: ".txt"}
	pdf := &fakeExtractor{ext: ".pdf"}
	r := NewRegistry(txt, pdf)

	got, err := r.ForFile("/books/novel.PDF")
	require.NoError(t, err)
	assert.Same(t, pdf, got)

	got, err = r.ForFile("notes.txt")
	require.NoError(t, err)
	assert.Same(t, txt, got)
}

func TestRegistry_ForFile_Unsupported(t *testing.T) {
	r := NewRegistry(&fakeExtractor{ext: ".txt"})

	_, err := r.ForFile("image.png")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}

func TestRegistry_ExtractText(t *testing.T) {
	r := NewRegistry(&fakeExtractor{ext: ".txt", text: "hello"})

	text, err := r.ExtractText(context.Background(), "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
}

func TestRegistry_Metadata_FallsBackToStat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.txt")
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0o644))

	r := NewRegistry(&fakeExtractor{ext: ".txt", metaErr: errors.New("boom")})

	meta, err := r.Metadata(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "book.txt", meta.FileName)
	assert.Equal(t, int64(3), meta.FileSize)
	assert.Equal(t, "txt", meta.FileType)
}

func TestProcessor_ProcessDocument(t *testing.T) {
	text := strings.Repeat("A sentence about reading habits and memory. ", 20)
	r := NewRegistry(&fakeExtractor{
		ext:  ".txt",
		text: text,
		meta: domain.FileMetadata{FileName: "habits.txt", FileType: "txt", FileSize: int64(len(text)), Title: "Habits"},
	})

	chunks, meta, err := NewProcessor(r).ProcessDocument(context.Background(), "habits.txt", 200, 50)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	assert.Equal(t, "habits.txt", meta.FileName)
	for i, chunk := range chunks {
		assert.Equal(t, "habits.txt", chunk.Metadata.FileName)
		assert.Equal(t, "Habits", chunk.Metadata.Title)
		assert.Equal(t, i, chunk.Metadata.ChunkIndex)
		assert.Equal(t, len(chunks), chunk.Metadata.TotalChunks)
		assert.Empty(t, chunk.ID)
	}
}

func TestProcessor_ProcessDocument_UnsupportedFormat(t *testing.T) {
	p := NewProcessor(NewRegistry())

	_, _, err := p.ProcessDocument(context.Background(), "file.xyz", 1000, 200)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}
