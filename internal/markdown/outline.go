package markdown

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Outline holds structural statistics computed from a CommonMark parse of the
// source. It complements Parse: goldmark understands nesting and fenced code,
// which the line classifier ignores on purpose.
type Outline struct {
	Title         string      `json:"title,omitempty"`
	Headings      map[int]int `json:"headings"` // level -> count
	BulletItems   int         `json:"bullet_items"`
	NumberedItems int         `json:"numbered_items"`
	Paragraphs    int         `json:"paragraphs"`
	CodeBlocks    int         `json:"code_blocks"`
	Tables        int         `json:"tables"`
}

// ComputeOutline walks the goldmark AST of src.
func ComputeOutline(src []byte) Outline {
	out := Outline{Headings: map[int]int{}}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			out.Headings[node.Level]++
			if out.Title == "" {
				out.Title = strings.TrimSpace(string(node.Text(src)))
			}
			return ast.WalkSkipChildren, nil
		case *ast.ListItem:
			if list, ok := node.Parent().(*ast.List); ok && list.IsOrdered() {
				out.NumberedItems++
			} else {
				out.BulletItems++
			}
		case *ast.Paragraph, *ast.TextBlock:
			if _, inItem := n.Parent().(*ast.ListItem); !inItem {
				out.Paragraphs++
			}
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			out.CodeBlocks++
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	out.Tables = countPipeTables(src)
	return out
}

// countPipeTables counts GFM-style tables by their delimiter row. The default
// goldmark parser has no table extension, so this is done on raw lines.
func countPipeTables(src []byte) int {
	n := 0
	for _, line := range strings.Split(string(src), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "|") && strings.Contains(line, "---") &&
			strings.Trim(line, "|-: ") == "" {
			n++
		}
	}
	return n
}

// String renders the outline as short "key: value" lines for prompts and logs.
func (o Outline) String() string {
	var sb strings.Builder
	if o.Title != "" {
		fmt.Fprintf(&sb, "Title: %s\n", o.Title)
	}
	levels := make([]int, 0, len(o.Headings))
	for lvl := range o.Headings {
		levels = append(levels, lvl)
	}
	sort.Ints(levels)
	parts := make([]string, 0, len(levels))
	for _, lvl := range levels {
		parts = append(parts, fmt.Sprintf("h%d=%d", lvl, o.Headings[lvl]))
	}
	if len(parts) == 0 {
		parts = append(parts, "none")
	}
	fmt.Fprintf(&sb, "Headings: %s\n", strings.Join(parts, " "))
	fmt.Fprintf(&sb, "Bullet items: %d\n", o.BulletItems)
	fmt.Fprintf(&sb, "Numbered items: %d\n", o.NumberedItems)
	fmt.Fprintf(&sb, "Paragraphs: %d\n", o.Paragraphs)
	fmt.Fprintf(&sb, "Code blocks: %d\n", o.CodeBlocks)
	fmt.Fprintf(&sb, "Tables: %d", o.Tables)
	return sb.String()
}
