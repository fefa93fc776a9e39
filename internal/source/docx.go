package source

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fumiama/go-docx"
)

// DOCXImporter reads an existing Word document back into markdown lines.
// Heading styles map to '#' markers and list styles to bullet or numbered
// items, so minutes typed straight into Word convert like markdown does.
type DOCXImporter struct{}

func (p *DOCXImporter) Format() string { return "docx" }

func (p *DOCXImporter) Import(r io.Reader, filename string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parse docx: %w", err)
	}

	var lines []string
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := strings.TrimSpace(paragraphText(para))
		prefix := paragraphPrefix(para)
		if text == "" && !strings.HasPrefix(prefix, "#") {
			continue
		}
		lines = append(lines, strings.TrimSpace(prefix+text))
	}
	return strings.Join(lines, "\n"), nil
}

func paragraphText(p *docx.Paragraph) string {
	var sb strings.Builder
	for _, c := range p.Children {
		run, ok := c.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			switch x := rc.(type) {
			case *docx.Text:
				sb.WriteString(x.Text)
			case *docx.Tab:
				sb.WriteByte(' ')
			case *docx.BarterRabbet:
				sb.WriteByte(' ')
			}
		}
	}
	return sb.String()
}

// paragraphPrefix derives the markdown marker from the paragraph style.
func paragraphPrefix(p *docx.Paragraph) string {
	if p.Properties == nil {
		return ""
	}
	if p.Properties.Style != nil {
		style := strings.ToLower(strings.ReplaceAll(p.Properties.Style.Val, " ", ""))
		switch {
		case style == "title":
			return "# "
		case strings.HasPrefix(style, "heading"):
			level, err := strconv.Atoi(strings.TrimPrefix(style, "heading"))
			if err != nil || level < 1 {
				level = 1
			}
			return strings.Repeat("#", level) + " "
		case strings.HasPrefix(style, "listbullet"):
			return "- "
		case strings.HasPrefix(style, "listnumber"):
			return "1. "
		}
	}
	if p.Properties.NumProperties != nil {
		return "- "
	}
	return ""
}
