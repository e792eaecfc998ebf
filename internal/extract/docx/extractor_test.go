package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookwise-ai/bookwise/internal/core/domain"
	"github.com/bookwise-ai/bookwise/internal/core/ports/driven"
)

const documentXMLSample = `<?xml version="1.0"?>
<document xmlns="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <body>
    <p><r><t>First paragraph.</t></r></p>
    <p><r><t>Second </t></r><r><t>paragraph.</t></r></p>
  </body>
</document>`

const coreXMLSample = `<?xml version="1.0"?>
<coreProperties xmlns="http://schemas.openxmlformats.org/package/2006/metadata/core-properties">
  <title>Thinking in Systems</title>
  <creator>Donella Meadows</creator>
  <subject>Systems</subject>
</coreProperties>`

const appXMLSample = `<?xml version="1.0"?>
<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties">
  <Pages>218</Pages>
</Properties>`

// writeDocx builds a minimal OOXML archive on disk.
func writeDocx(t *testing.T, entries map[string]string) string {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range entries {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	path := filepath.Join(t.TempDir(), "systems_book.docx")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Extractor = (*Extractor)(nil)
}

func TestSupports(t *testing.T) {
	e := New()
	assert.True(t, e.Supports(".docx"))
	assert.False(t, e.Supports(".doc"))
	assert.False(t, e.Supports(".txt"))
}

func TestExtract(t *testing.T) {
	path := writeDocx(t, map[string]string{
		"word/document.xml": documentXMLSample,
	})

	text, err := New().Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "First paragraph.\nSecond paragraph.", text)
}

func TestExtract_NotAZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.docx")
	require.NoError(t, os.WriteFile(path, []byte("not a zip archive"), 0o644))

	_, err := New().Extract(context.Background(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestExtract_MissingDocumentXML(t *testing.T) {
	path := writeDocx(t, map[string]string{
		"word/other.xml": "<x/>",
	})

	_, err := New().Extract(context.Background(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestMetadata(t *testing.T) {
	path := writeDocx(t, map[string]string{
		"word/document.xml": documentXMLSample,
		"docProps/core.xml": coreXMLSample,
		"docProps/app.xml":  appXMLSample,
	})

	meta, err := New().Metadata(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "systems_book.docx", meta.FileName)
	assert.Equal(t, "docx", meta.FileType)
	assert.Equal(t, "Thinking in Systems", meta.Title)
	assert.Equal(t, "Donella Meadows", meta.Author)
	assert.Equal(t, "Systems", meta.Subject)
	assert.Equal(t, 218, meta.PageCount)
}

func TestMetadata_NoProps(t *testing.T) {
	path := writeDocx(t, map[string]string{
		"word/document.xml": documentXMLSample,
	})

	meta, err := New().Metadata(context.Background(), path)
	require.NoError(t, err)

	// Title falls back to the file name when core.xml is absent.
	assert.Equal(t, "systems book", meta.Title)
	assert.Empty(t, meta.Author)
	assert.Zero(t, meta.PageCount)
}

func TestParseDocumentXML_Invalid(t *testing.T) {
	assert.Empty(t, parseDocumentXML([]byte("not xml at all <<<")))
}
