package doctree

// Kind tags the variant of a DocumentModel node.
type Kind string

const (
	Heading      Kind = "heading"
	BulletItem   Kind = "bullet"
	NumberedItem Kind = "numbered"
	Paragraph    Kind = "paragraph"
)

// Node is one line-level element of a parsed document.
type Node struct {
	Kind  Kind   `json:"kind"`
	Level int    `json:"level,omitempty"` // Heading level (1+), zero for other kinds
	Text  string `json:"text"`
}

// Model is the ordered node sequence; order equals source line order.
type Model []Node

func NewHeading(level int, text string) Node {
	if level < 1 {
		level = 1
	}
	return Node{Kind: Heading, Level: level, Text: text}
}

func NewBullet(text string) Node    { return Node{Kind: BulletItem, Text: text} }
func NewNumbered(text string) Node  { return Node{Kind: NumberedItem, Text: text} }
func NewParagraph(text string) Node { return Node{Kind: Paragraph, Text: text} }

// Count returns how many nodes of the given kind the model holds.
func (m Model) Count(k Kind) int {
	n := 0
	for _, node := range m {
		if node.Kind == k {
			n++
		}
	}
	return n
}

// Headings returns the heading nodes at the given level.
func (m Model) Headings(level int) []Node {
	var out []Node
	for _, node := range m {
		if node.Kind == Heading && node.Level == level {
			out = append(out, node)
		}
	}
	return out
}

// Title returns the text of the first non-empty heading, if any.
func (m Model) Title() string {
	for _, node := range m {
		if node.Kind == Heading && node.Text != "" {
			return node.Text
		}
	}
	return ""
}
