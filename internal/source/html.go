package source

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// HTMLImporter turns exported HTML minutes into markdown lines: h1-h6 become
// headings, list items become bullets or numbered items, and block text
// becomes one paragraph line each.
type HTMLImporter struct{}

func (p *HTMLImporter) Format() string { return "html" }

func (p *HTMLImporter) Import(r io.Reader, filename string) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var lines []string
	emit := func(prefix, text string) {
		text = collapseSpace(text)
		if text == "" && !strings.HasPrefix(prefix, "#") {
			return
		}
		lines = append(lines, strings.TrimSpace(prefix+text))
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				emit(strings.Repeat("#", level)+" ", textContent(n))
				return
			}
			switch n.Data {
			case "script", "style", "nav", "footer", "header", "head":
				return
			case "li":
				if n.Parent != nil && n.Parent.Data == "ol" {
					emit(fmt.Sprintf("%d. ", listPosition(n)), textContent(n))
				} else {
					emit("- ", textContent(n))
				}
				return
			case "p", "td", "th", "blockquote", "pre", "dt", "dd":
				emit("", textContent(n))
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	if body := findBody(doc); body != nil {
		walk(body)
	} else {
		walk(doc)
	}

	if title := findTitle(doc); title != "" && (len(lines) == 0 || !strings.HasPrefix(lines[0], "# ")) {
		lines = append([]string{"# " + title}, lines...)
	}
	return strings.Join(lines, "\n"), nil
}

func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

// listPosition returns the 1-based index of an <li> among its siblings.
func listPosition(li *html.Node) int {
	pos := 1
	for s := li.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == html.ElementNode && s.Data == "li" {
			pos++
		}
	}
	return pos
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		if n.Type == html.ElementNode && n.Data == "br" {
			buf.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return buf.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return collapseSpace(textContent(n))
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
