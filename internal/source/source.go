// Package source reads meeting minutes from disk into an immutable Document.
//
// Markdown and plain text are taken verbatim. HTML, PDF, DOCX and CSV inputs are
// normalized into markdown lines so the rest of the pipeline only ever deals
// with one line-oriented format.
package source

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrFileNotFound = errors.New("source file not found")
	ErrRead         = errors.New("source read failed")
)

// Document is the raw source of one conversion. It is never mutated.
type Document struct {
	Path    string
	RawText string
	Format  string // "markdown", "text", "html", "pdf", "docx" or "csv"
}

// Name returns the file name without directory or extension.
func (d Document) Name() string {
	base := filepath.Base(d.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Importer converts raw file bytes into markdown-style text.
type Importer interface {
	Import(r io.Reader, filename string) (string, error)
	Format() string
}

// Reader resolves importers by extension and reads documents.
type Reader struct {
	// PDFFallbackPdftotext enables the pdftotext binary when the Go PDF
	// library cannot extract text.
	PDFFallbackPdftotext bool
}

// ForFile returns the importer for a filename. Unknown extensions are read as
// plain text.
func (rd Reader) ForFile(filename string) Importer {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".md", ".markdown":
		return &TextImporter{format: "markdown"}
	case ".html", ".htm":
		return &HTMLImporter{}
	case ".pdf":
		return &PDFImporter{FallbackPdftotext: rd.PDFFallbackPdftotext}
	case ".docx":
		return &DOCXImporter{}
	case ".csv":
		return &CSVImporter{}
	default:
		return &TextImporter{format: "text"}
	}
}

var supportedExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".txt":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
	".csv":      true,
}

// IsSupportedExtension reports whether filename has an extension with a
// dedicated importer or a known text format.
func IsSupportedExtension(filename string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Read opens path and imports it. Absence maps to ErrFileNotFound, every
// other failure to ErrRead.
func (rd Reader) Read(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Document{}, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return Document{}, fmt.Errorf("%w: %s: %w", ErrRead, path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Document{}, fmt.Errorf("%w: %s: %w", ErrRead, path, err)
	}
	if info.IsDir() {
		return Document{}, fmt.Errorf("%w: %s is a directory", ErrRead, path)
	}

	imp := rd.ForFile(path)
	text, err := imp.Import(f, filepath.Base(path))
	if err != nil {
		return Document{}, fmt.Errorf("%w: %s: %w", ErrRead, path, err)
	}

	return Document{
		Path:    path,
		RawText: text,
		Format:  imp.Format(),
	}, nil
}

// Read uses a Reader with default settings.
func Read(path string) (Document, error) {
	return Reader{}.Read(path)
}
