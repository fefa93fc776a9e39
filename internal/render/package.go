package render

import (
	"archive/zip"
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/minutesdoc/internal/doctree"
)

// templateFS holds the static package parts: a styles part defining
// Heading1-9, ListBullet and ListNumber, and a document relationship to
// word/numbering.xml, which is generated per document.
//
//go:embed all:docxtemplate
var templateFS embed.FS

const (
	templateRoot  = "docxtemplate"
	numberingPart = "word/numbering.xml"

	bulletNumID = 1
)

// newPackage returns an empty document whose package carries the minutes
// styles and a numbering part with one restartable decimal list per run of
// numbered items in m. go-docx cannot add a relationship to a part it did
// not write, so the package is assembled here and parsed back.
func newPackage(m doctree.Model) (*docx.Docx, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	err := fs.WalkDir(templateFS, templateRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := templateFS.ReadFile(path)
		if err != nil {
			return err
		}
		w, err := zw.Create(strings.TrimPrefix(path, templateRoot+"/"))
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("docx template: %w", err)
	}

	w, err := zw.Create(numberingPart)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(numberingXML(numberedLists(m))); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}

	return docx.Parse(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
}

// numberedLists counts the runs of consecutive numbered items in m.
func numberedLists(m doctree.Model) int {
	lists := 0
	var prev doctree.Kind
	for _, n := range m {
		if n.Kind == doctree.NumberedItem && prev != doctree.NumberedItem {
			lists++
		}
		prev = n.Kind
	}
	return lists
}

// numberingXML defines the bullet list as numId 1 and the decimal lists as
// numId 2..lists+1, each restarting at 1. numId 2 always exists so the
// ListNumber style resolves even without numbered items.
func numberingXML(lists int) []byte {
	if lists < 1 {
		lists = 1
	}
	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	b.WriteString(`<w:numbering xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` + "\n")
	b.WriteString(`<w:abstractNum w:abstractNumId="0"><w:multiLevelType w:val="singleLevel"/>` +
		`<w:lvl w:ilvl="0"><w:start w:val="1"/><w:numFmt w:val="bullet"/><w:lvlText w:val="•"/><w:lvlJc w:val="left"/>` +
		`<w:pPr><w:ind w:left="720" w:hanging="360"/></w:pPr></w:lvl>` +
		`</w:abstractNum>` + "\n")
	b.WriteString(`<w:abstractNum w:abstractNumId="1"><w:multiLevelType w:val="singleLevel"/>` +
		`<w:lvl w:ilvl="0"><w:start w:val="1"/><w:numFmt w:val="decimal"/><w:lvlText w:val="%1."/><w:lvlJc w:val="left"/>` +
		`<w:pPr><w:ind w:left="720" w:hanging="360"/></w:pPr></w:lvl>` +
		`</w:abstractNum>` + "\n")
	fmt.Fprintf(&b, `<w:num w:numId="%d"><w:abstractNumId w:val="0"/></w:num>`+"\n", bulletNumID)
	for i := 0; i < lists; i++ {
		fmt.Fprintf(&b, `<w:num w:numId="%d"><w:abstractNumId w:val="1"/>`+
			`<w:lvlOverride w:ilvl="0"><w:startOverride w:val="1"/></w:lvlOverride></w:num>`+"\n", bulletNumID+1+i)
	}
	b.WriteString(`</w:numbering>` + "\n")
	return b.Bytes()
}
