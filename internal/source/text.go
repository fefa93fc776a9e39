package source

import (
	"io"
	"strings"
)

// TextImporter passes markdown and plain text through unchanged, apart from
// normalizing Windows line endings.
type TextImporter struct {
	format string
}

func (p *TextImporter) Format() string {
	if p.format == "" {
		return "text"
	}
	return p.format
}

func (p *TextImporter) Import(r io.Reader, filename string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	text := strings.TrimPrefix(string(data), "\ufeff")
	return strings.ReplaceAll(text, "\r\n", "\n"), nil
}
