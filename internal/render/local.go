package render

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dgallion1/minutesdoc/internal/doctree"
	"github.com/dgallion1/minutesdoc/internal/markdown"
)

const (
	DefaultPrefix = "minutes"
	timestampFmt  = "20060102_150405"
)

// Author writes a document model in a word-processor format.
type Author interface {
	Write(w io.Writer, m doctree.Model) error
}

// LocalStrategy parses the source deterministically and authors the .docx
// on disk.
type LocalStrategy struct {
	author    Author
	outputDir string
	prefix    string
	now       func() time.Time
	log       *slog.Logger
}

type LocalOptions struct {
	OutputDir string
	Prefix    string
	// Now is overridable for tests.
	Now func() time.Time
}

// NewLocalStrategy accepts a nil author; rendering then fails with
// ErrMissingDependency.
func NewLocalStrategy(author Author, opts LocalOptions, log *slog.Logger) *LocalStrategy {
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if log == nil {
		log = slog.Default()
	}
	return &LocalStrategy{
		author:    author,
		outputDir: opts.OutputDir,
		prefix:    opts.Prefix,
		now:       opts.Now,
		log:       log,
	}
}

func (s *LocalStrategy) Name() string { return StrategyLocal }

// OutputPath returns the artifact path for a render started at t.
func (s *LocalStrategy) OutputPath(t time.Time) string {
	return filepath.Join(s.outputDir, fmt.Sprintf("%s_%s.docx", s.prefix, t.Format(timestampFmt)))
}

func (s *LocalStrategy) Render(ctx context.Context, in Input) (Result, error) {
	if s.author == nil {
		return Result{}, ErrMissingDependency
	}

	model := markdown.Parse(in.Doc.RawText)
	path := s.OutputPath(s.now())

	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("%w: create output dir: %w", ErrRender, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return Result{}, fmt.Errorf("%w: create %s: %w", ErrRender, path, err)
	}
	if err := s.author.Write(f, model); err != nil {
		f.Close()
		os.Remove(path)
		return Result{}, fmt.Errorf("%w: write %s: %w", ErrRender, path, err)
	}
	if err := f.Close(); err != nil {
		return Result{}, fmt.Errorf("%w: close %s: %w", ErrRender, path, err)
	}

	s.log.Info("local render complete",
		"path", path,
		"headings", model.Count(doctree.Heading),
		"bullets", model.Count(doctree.BulletItem),
		"numbered", model.Count(doctree.NumberedItem),
		"paragraphs", model.Count(doctree.Paragraph),
	)
	return Result{ArtifactPath: path, Verified: true}, nil
}

// DocxAuthor writes .docx files with go-docx. Headings and list items
// reference styles and numbering defined in the package itself, so Word
// shows them as real headings and lists.
type DocxAuthor struct{}

func (DocxAuthor) Write(w io.Writer, m doctree.Model) error {
	f, err := newPackage(m)
	if err != nil {
		return err
	}
	numID := bulletNumID
	var prev doctree.Kind
	for _, n := range m {
		switch n.Kind {
		case doctree.Heading:
			f.AddParagraph().Style(HeadingStyle(n.Level)).
				AddText(n.Text).Bold().Size(headingSize(n.Level))
		case doctree.BulletItem:
			f.AddParagraph().Style(StyleListBullet).
				NumPr(strconv.Itoa(bulletNumID), "0").AddText(n.Text)
		case doctree.NumberedItem:
			if prev != doctree.NumberedItem {
				numID++
			}
			f.AddParagraph().Style(StyleListNumber).
				NumPr(strconv.Itoa(numID), "0").AddText(n.Text)
		default:
			f.AddParagraph().AddText(n.Text)
		}
		prev = n.Kind
	}
	_, err = f.WriteTo(w)
	return err
}

const (
	StyleListBullet = "ListBullet"
	StyleListNumber = "ListNumber"
)

// HeadingStyle names the paragraph style for a heading level. The package
// styles part defines Heading1 through Heading9.
func HeadingStyle(level int) string {
	if level < 1 {
		level = 1
	}
	if level > 9 {
		level = 9
	}
	return fmt.Sprintf("Heading%d", level)
}

// headingSize is in half-points: 16pt for level 1 down to 12pt.
func headingSize(level int) string {
	size := 36 - 4*level
	if size < 24 {
		size = 24
	}
	return fmt.Sprint(size)
}
