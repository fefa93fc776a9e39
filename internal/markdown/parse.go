// Package markdown turns markdown-style minutes into a flat doctree.Model.
//
// The grammar is deliberately line-oriented: every non-blank line becomes exactly
// one node, classified by its prefix. There is no nesting, no paragraph merging
// and no escaping of marker characters.
package markdown

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dgallion1/minutesdoc/internal/doctree"
)

const headingMarker = '#'

var numberedPrefix = regexp.MustCompile(`^\d+\.`)

// Parse classifies each non-blank line of raw. It never fails.
func Parse(raw string) doctree.Model {
	var model doctree.Model
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		model = append(model, classify(line))
	}
	return model
}

// classify applies the prefix rules in priority order: heading, bullet,
// numbered item, paragraph.
func classify(line string) doctree.Node {
	if line[0] == headingMarker {
		rest := strings.TrimLeft(line, string(headingMarker))
		return doctree.NewHeading(len(line)-len(rest), strings.TrimSpace(rest))
	}
	if strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ") {
		return doctree.NewBullet(strings.TrimSpace(line[2:]))
	}
	if loc := numberedPrefix.FindStringIndex(line); loc != nil {
		return doctree.NewNumbered(strings.TrimSpace(line[loc[1]:]))
	}
	return doctree.NewParagraph(line)
}

// Format reconstructs markdown text from a model. Parse(Format(m)) yields m for
// any m produced by Parse.
func Format(m doctree.Model) string {
	var sb strings.Builder
	seq := 0
	for i, node := range m {
		if i > 0 {
			sb.WriteByte('\n')
		}
		if node.Kind != doctree.NumberedItem {
			seq = 0
		}
		switch node.Kind {
		case doctree.Heading:
			sb.WriteString(strings.Repeat(string(headingMarker), max(node.Level, 1)))
			if node.Text != "" {
				sb.WriteByte(' ')
				sb.WriteString(node.Text)
			}
		case doctree.BulletItem:
			sb.WriteString("- ")
			sb.WriteString(node.Text)
		case doctree.NumberedItem:
			seq++
			fmt.Fprintf(&sb, "%d. %s", seq, node.Text)
		default:
			sb.WriteString(node.Text)
		}
	}
	return sb.String()
}
