// Package docx extracts Word documents via their OOXML archive.
package docx

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bookwise-ai/bookwise/internal/core/domain"
	"github.com/bookwise-ai/bookwise/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles DOCX files.
type Extractor struct{}

// New creates a new DOCX extractor.
func New() *Extractor {
	return &Extractor{}
}

// Supports reports whether the extension is handled.
func (e *Extractor) Supports(ext string) bool {
	return ext == ".docx"
}

// Extract reads paragraph text from word/document.xml.
func (e *Extractor) Extract(_ context.Context, path string) (string, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("%w: open %s: %v", domain.ErrExtractionFailed, path, err)
	}
	defer reader.Close()

	content, err := readArchiveFile(&reader.Reader, "word/document.xml")
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrExtractionFailed, path, err)
	}
	if content == nil {
		return "", fmt.Errorf("%w: %s has no word/document.xml", domain.ErrExtractionFailed, path)
	}

	return parseDocumentXML(content), nil
}

// Metadata returns filesystem metadata plus title and author from
// docProps/core.xml, best effort.
func (e *Extractor) Metadata(_ context.Context, path string) (domain.FileMetadata, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.FileMetadata{}, fmt.Errorf("stat %s: %w", path, err)
	}

	meta := domain.FileMetadata{
		FileName:     info.Name(),
		FileSize:     info.Size(),
		FileType:     "docx",
		LastModified: info.ModTime(),
	}

	if reader, err := zip.OpenReader(path); err == nil {
		defer reader.Close()
		if content, err := readArchiveFile(&reader.Reader, "docProps/core.xml"); err == nil && content != nil {
			var core coreXML
			if xml.Unmarshal(content, &core) == nil {
				meta.Title = strings.TrimSpace(core.Title)
				meta.Author = strings.TrimSpace(core.Creator)
				meta.Subject = strings.TrimSpace(core.Subject)
			}
		}
		if content, err := readArchiveFile(&reader.Reader, "docProps/app.xml"); err == nil && content != nil {
			var app appXML
			if xml.Unmarshal(content, &app) == nil {
				meta.PageCount = app.Pages
			}
		}
	}

	if meta.Title == "" {
		meta.Title = titleFromPath(path)
	}
	return meta, nil
}

// readArchiveFile returns the named archive entry's bytes, or nil when the
// entry does not exist.
func readArchiveFile(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, err
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		return content, nil
	}
	return nil, nil
}

// documentXML represents the structure of word/document.xml.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text []textElement `xml:"t"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

// parseDocumentXML extracts text content from the document XML.
func parseDocumentXML(content []byte) string {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return ""
	}

	var result strings.Builder
	for i, para := range doc.Body.Paragraphs {
		if i > 0 {
			result.WriteString("\n")
		}
		for _, run := range para.Runs {
			for _, text := range run.Text {
				result.WriteString(text.Content)
			}
		}
	}

	return strings.TrimSpace(result.String())
}

// coreXML represents the structure of docProps/core.xml.
type coreXML struct {
	Title   string `xml:"title"`
	Creator string `xml:"creator"`
	Subject string `xml:"subject"`
}

// appXML represents the structure of docProps/app.xml.
type appXML struct {
	Pages int `xml:"Pages"`
}

// titleFromPath derives a fallback title from the file name.
func titleFromPath(path string) string {
	filename := filepath.Base(path)
	if ext := filepath.Ext(filename); ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}
