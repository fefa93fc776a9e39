package markdown

import (
	"reflect"
	"strings"
	"testing"

	"github.com/dgallion1/minutesdoc/internal/doctree"
)

func TestParse_Examples(t *testing.T) {
	tests := []struct {
		input string
		want  doctree.Node
	}{
		{"- item", doctree.NewBullet("item")},
		{"* item", doctree.NewBullet("item")},
		{"1. item", doctree.NewNumbered("item")},
		{"12. item", doctree.NewNumbered("item")},
		{"3.item", doctree.NewNumbered("item")},
		{"plain text", doctree.NewParagraph("plain text")},
		{"-item", doctree.NewParagraph("-item")},
		{"**bold** lead", doctree.NewParagraph("**bold** lead")},
		{"# Title", doctree.NewHeading(1, "Title")},
		{"#NoSpace", doctree.NewHeading(1, "NoSpace")},
		{"  - indented bullet  ", doctree.NewBullet("indented bullet")},
	}
	for _, tt := range tests {
		got := Parse(tt.input)
		if len(got) != 1 {
			t.Fatalf("input=%q: expected 1 node, got %d", tt.input, len(got))
		}
		if got[0] != tt.want {
			t.Errorf("input=%q: expected %+v, got %+v", tt.input, tt.want, got[0])
		}
	}
}

func TestParse_HeadingLevels(t *testing.T) {
	for level := 1; level <= 8; level++ {
		line := strings.Repeat("#", level) + " Section"
		got := Parse(line)
		if len(got) != 1 {
			t.Fatalf("level %d: expected 1 node, got %d", level, len(got))
		}
		if got[0].Kind != doctree.Heading {
			t.Fatalf("level %d: expected heading, got %s", level, got[0].Kind)
		}
		if got[0].Level != level {
			t.Errorf("expected level %d, got %d", level, got[0].Level)
		}
		if got[0].Text != "Section" {
			t.Errorf("level %d: expected text %q, got %q", level, "Section", got[0].Text)
		}
	}
}

func TestParse_MarkerOnlyHeading(t *testing.T) {
	got := Parse("###")
	want := doctree.Model{doctree.NewHeading(3, "")}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestParse_HeadingTakesPriorityOverNumbers(t *testing.T) {
	got := Parse("# 1. Overview")
	if got[0].Kind != doctree.Heading || got[0].Text != "1. Overview" {
		t.Errorf("expected heading %q, got %+v", "1. Overview", got[0])
	}
}

func TestParse_NodeCountMatchesNonBlankLines(t *testing.T) {
	input := "# Minutes\n\n\nAttendees: Sato, Kim\n   \n- decision one\r\n* decision two\n\n1. follow up\n2. report\nClosing remarks.\n"
	got := Parse(input)

	nonBlank := 0
	for _, line := range strings.Split(input, "\n") {
		if strings.TrimSpace(line) != "" {
			nonBlank++
		}
	}
	if len(got) != nonBlank {
		t.Fatalf("expected %d nodes, got %d", nonBlank, len(got))
	}

	wantKinds := []doctree.Kind{
		doctree.Heading,
		doctree.Paragraph,
		doctree.BulletItem,
		doctree.BulletItem,
		doctree.NumberedItem,
		doctree.NumberedItem,
		doctree.Paragraph,
	}
	for i, k := range wantKinds {
		if got[i].Kind != k {
			t.Errorf("node[%d]: expected kind %s, got %s", i, k, got[i].Kind)
		}
	}
	if got[2].Text != "decision one" {
		t.Errorf("expected carriage return stripped, got %q", got[2].Text)
	}
}

func TestParse_EmptyInput(t *testing.T) {
	if got := Parse(""); len(got) != 0 {
		t.Errorf("expected 0 nodes for empty input, got %d", len(got))
	}
	if got := Parse("\n \n\t\n"); len(got) != 0 {
		t.Errorf("expected 0 nodes for blank input, got %d", len(got))
	}
}

func TestFormat_RoundTrip(t *testing.T) {
	inputs := []string{
		"# Weekly sync\n## Agenda\n- budget\n- hiring\n1. approve plan\n2. send notes\nAction owner: Lee",
		"###\n#\n# #hash in text\n- # not a heading\n1.\n1. 2. nested marker\nparagraph 1.5 million",
		"###### deep\n####### deeper\n* star bullet\n10. ten\nplain",
		"- a\n1. one\n- b\n1. uno\n2. dos",
		"",
	}
	for _, in := range inputs {
		first := Parse(in)
		second := Parse(Format(first))
		if !reflect.DeepEqual(first, second) {
			t.Errorf("round trip mismatch for %q:\nfirst:  %+v\nsecond: %+v", in, first, second)
		}
	}
}

func TestFormat_NumbersRestartAfterOtherNodes(t *testing.T) {
	m := doctree.Model{
		doctree.NewNumbered("a"),
		doctree.NewNumbered("b"),
		doctree.NewParagraph("break"),
		doctree.NewNumbered("c"),
	}
	want := "1. a\n2. b\nbreak\n1. c"
	if got := Format(m); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
