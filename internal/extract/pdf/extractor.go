// Package pdf extracts PDF text via the poppler pdftotext tool.
package pdf

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bookwise-ai/bookwise/internal/core/domain"
	"github.com/bookwise-ai/bookwise/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// ErrPDFToolNotFound is returned when pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

// Extractor handles PDF files by shelling out to pdftotext, with pdfinfo
// supplying document metadata when available.
type Extractor struct {
	runner driven.CommandRunner
}

// execRunner runs commands with os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// New creates a new PDF extractor using the system pdftotext.
func New() *Extractor {
	return &Extractor{runner: execRunner{}}
}

// NewWithRunner creates a PDF extractor with an injected command runner.
func NewWithRunner(runner driven.CommandRunner) *Extractor {
	return &Extractor{runner: runner}
}

// CheckAvailable reports whether pdftotext is installed.
func CheckAvailable() error {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions returns platform hints for installing poppler.
func InstallInstructions() string {
	return "pdftotext is required for PDF support:\n" +
		"  macOS:  brew install poppler\n" +
		"  Debian: apt install poppler-utils\n" +
		"  Fedora: dnf install poppler-utils"
}

// Supports reports whether the extension is handled.
func (e *Extractor) Supports(ext string) bool {
	return ext == ".pdf"
}

// Extract converts the PDF to plain text.
func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	out, err := e.runner.Run(ctx, "pdftotext", "-enc", "UTF-8", path, "-")
	if err != nil {
		return "", fmt.Errorf("%w: pdftotext failed for %s: %v", domain.ErrExtractionFailed, path, err)
	}
	return string(bytes.TrimSpace(out)), nil
}

// Metadata returns filesystem metadata plus title, author and page count
// from pdfinfo. The pdfinfo call is best effort; its failure leaves the
// format-specific fields empty.
func (e *Extractor) Metadata(ctx context.Context, path string) (domain.FileMetadata, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.FileMetadata{}, fmt.Errorf("stat %s: %w", path, err)
	}

	meta := domain.FileMetadata{
		FileName:     info.Name(),
		FileSize:     info.Size(),
		FileType:     "pdf",
		LastModified: info.ModTime(),
	}

	out, err := e.runner.Run(ctx, "pdfinfo", path)
	if err == nil {
		parsePDFInfo(out, &meta)
	}
	if meta.Title == "" {
		meta.Title = titleFromPath(path)
	}
	return meta, nil
}

// parsePDFInfo reads pdfinfo's "Key: value" output.
func parsePDFInfo(out []byte, meta *domain.FileMetadata) {
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch key {
		case "Title":
			meta.Title = value
		case "Author":
			meta.Author = value
		case "Subject":
			meta.Subject = value
		case "Pages":
			if n, err := strconv.Atoi(value); err == nil {
				meta.PageCount = n
			}
		}
	}
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
