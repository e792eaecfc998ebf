// Package epub extracts EPUB books via their OCF container.
//
// An EPUB is a ZIP archive: META-INF/container.xml points at an OPF
// package document, whose manifest and spine order the XHTML content
// files. Text extraction walks the spine and strips markup from each
// content file; when the container or OPF is malformed the extractor
// falls back to every .xhtml/.html entry in archive order.
package epub

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bookwise-ai/bookwise/internal/core/domain"
	"github.com/bookwise-ai/bookwise/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles EPUB files.
type Extractor struct{}

// New creates a new EPUB extractor.
func New() *Extractor {
	return &Extractor{}
}

// Supports reports whether the extension is handled.
func (e *Extractor) Supports(ext string) bool {
	return ext == ".epub"
}

// Extract reads the book's content files in spine order and strips markup.
func (e *Extractor) Extract(_ context.Context, path string) (string, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("%w: open %s: %v", domain.ErrExtractionFailed, path, err)
	}
	defer reader.Close()

	files := contentFiles(&reader.Reader)
	if len(files) == 0 {
		return "", fmt.Errorf("%w: %s contains no content files", domain.ErrExtractionFailed, path)
	}

	var parts []string
	for _, name := range files {
		raw, err := readArchiveFile(&reader.Reader, name)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %v", domain.ErrExtractionFailed, path, err)
		}
		if text := stripHTML(string(raw)); text != "" {
			parts = append(parts, text)
		}
	}

	return strings.Join(parts, "\n\n"), nil
}

// Metadata returns filesystem metadata plus title and author from the OPF
// package document, best effort.
func (e *Extractor) Metadata(_ context.Context, path string) (domain.FileMetadata, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.FileMetadata{}, fmt.Errorf("stat %s: %w", path, err)
	}

	meta := domain.FileMetadata{
		FileName:     info.Name(),
		FileSize:     info.Size(),
		FileType:     "epub",
		LastModified: info.ModTime(),
	}

	if reader, err := zip.OpenReader(path); err == nil {
		defer reader.Close()
		if pkg := readPackage(&reader.Reader); pkg != nil {
			meta.Title = strings.TrimSpace(pkg.Metadata.Title)
			meta.Author = strings.TrimSpace(pkg.Metadata.Creator)
			meta.Subject = strings.TrimSpace(pkg.Metadata.Subject)
		}
	}

	if meta.Title == "" {
		meta.Title = titleFromPath(path)
	}
	return meta, nil
}

// containerXML represents META-INF/container.xml.
type containerXML struct {
	Rootfiles struct {
		Rootfile []struct {
			FullPath string `xml:"full-path,attr"`
		} `xml:"rootfile"`
	} `xml:"rootfiles"`
}

// packageXML represents the OPF package document.
type packageXML struct {
	dir      string
	Metadata struct {
		Title   string `xml:"title"`
		Creator string `xml:"creator"`
		Subject string `xml:"subject"`
	} `xml:"metadata"`
	Manifest struct {
		Items []struct {
			ID   string `xml:"id,attr"`
			Href string `xml:"href,attr"`
		} `xml:"item"`
	} `xml:"manifest"`
	Spine struct {
		ItemRefs []struct {
			IDRef string `xml:"idref,attr"`
		} `xml:"itemref"`
	} `xml:"spine"`
}

// readPackage locates and parses the OPF document, or returns nil.
func readPackage(reader *zip.Reader) *packageXML {
	opfPath := ""
	if raw, err := readArchiveFile(reader, "META-INF/container.xml"); err == nil && raw != nil {
		var container containerXML
		if xml.Unmarshal(raw, &container) == nil && len(container.Rootfiles.Rootfile) > 0 {
			opfPath = container.Rootfiles.Rootfile[0].FullPath
		}
	}
	if opfPath == "" {
		for _, file := range reader.File {
			if strings.HasSuffix(file.Name, ".opf") {
				opfPath = file.Name
				break
			}
		}
	}
	if opfPath == "" {
		return nil
	}

	raw, err := readArchiveFile(reader, opfPath)
	if err != nil || raw == nil {
		return nil
	}
	var pkg packageXML
	if xml.Unmarshal(raw, &pkg) != nil {
		return nil
	}
	pkg.dir = path.Dir(opfPath)
	return &pkg
}

// contentFiles returns the book's content file names in reading order:
// spine order when the OPF parses, archive name order otherwise.
func contentFiles(reader *zip.Reader) []string {
	if pkg := readPackage(reader); pkg != nil && len(pkg.Spine.ItemRefs) > 0 {
		hrefs := make(map[string]string, len(pkg.Manifest.Items))
		for _, item := range pkg.Manifest.Items {
			hrefs[item.ID] = item.Href
		}

		var files []string
		for _, ref := range pkg.Spine.ItemRefs {
			href, ok := hrefs[ref.IDRef]
			if !ok || !isContentFile(href) {
				continue
			}
			name := href
			if pkg.dir != "." {
				name = path.Join(pkg.dir, href)
			}
			files = append(files, name)
		}
		if len(files) > 0 {
			return files
		}
	}

	var files []string
	for _, file := range reader.File {
		if isContentFile(file.Name) {
			files = append(files, file.Name)
		}
	}
	sort.Strings(files)
	return files
}

func isContentFile(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".xhtml", ".html", ".htm":
		return true
	}
	return false
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

// Pre-compiled regular expressions for markup stripping.
var (
	scriptTag     = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag      = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	headTag       = regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`)
	htmlComments  = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockElements = regexp.MustCompile(`(?i)</(p|div|br|hr|h[1-6]|li|tr|blockquote|pre|table|section|article)>`)
	brTags        = regexp.MustCompile(`(?i)<br\s*/?>`)
	allTags       = regexp.MustCompile(`<[^>]+>`)
	multiSpaces   = regexp.MustCompile(`[ \t]+`)
)

// stripHTML removes markup and extracts readable text content.
func stripHTML(content string) string {
	content = scriptTag.ReplaceAllString(content, "")
	content = styleTag.ReplaceAllString(content, "")
	content = headTag.ReplaceAllString(content, "")
	content = htmlComments.ReplaceAllString(content, "")
	content = blockElements.ReplaceAllString(content, "\n")
	content = brTags.ReplaceAllString(content, "\n")
	content = allTags.ReplaceAllString(content, "")
	content = html.UnescapeString(content)
	content = multiSpaces.ReplaceAllString(content, " ")

	lines := strings.Split(content, "\n")
	var result []string
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			result = append(result, line)
		}
	}
	return strings.Join(result, "\n")
}

// titleFromPath derives a fallback title from the file name.
func titleFromPath(p string) string {
	filename := filepath.Base(p)
	if ext := filepath.Ext(filename); ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}
