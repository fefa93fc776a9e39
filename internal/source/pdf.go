package source

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// PDFImporter extracts plain text from a PDF. Every extracted line becomes a
// paragraph line; PDFs carry no reliable heading markup.
type PDFImporter struct {
	FallbackPdftotext bool
}

func (p *PDFImporter) Format() string { return "pdf" }

func (p *PDFImporter) Import(r io.Reader, filename string) (string, error) {
	// ledongthuc/pdf opens by path, so spool to a temp file.
	tmp, err := os.CreateTemp("", "minutesdoc-pdf-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	text, err := extractPDFText(tmpPath)
	if err != nil && p.FallbackPdftotext {
		text, err = extractPdftotext(tmpPath)
	}
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}

	var lines []string
	for _, page := range strings.Split(text, "\f") {
		for _, line := range strings.Split(page, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, line)
			}
		}
	}
	return strings.Join(lines, "\n"), nil
}

func extractPDFText(path string) (string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		if i > 1 {
			buf.WriteString("\f")
		}
		for _, row := range rows {
			for _, word := range row.Content {
				buf.WriteString(word.S)
			}
			buf.WriteByte('\n')
		}
	}
	return buf.String(), nil
}

func extractPdftotext(path string) (string, error) {
	out, err := exec.Command("pdftotext", "-layout", path, "-").Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}
