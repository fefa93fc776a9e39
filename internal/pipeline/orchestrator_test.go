package pipeline

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/fumiama/go-docx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/minutesdoc/internal/analyze"
	"github.com/dgallion1/minutesdoc/internal/remote"
	"github.com/dgallion1/minutesdoc/internal/remote/remotetest"
	"github.com/dgallion1/minutesdoc/internal/render"
	"github.com/dgallion1/minutesdoc/internal/source"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestOrchestrator wires every stage to the same fake invoker.
func newTestOrchestrator(t *testing.T, fake remote.Invoker, author render.Author) (*Orchestrator, string) {
	t.Helper()
	log := quietLogger()
	outDir := t.TempDir()
	renderer := render.NewRenderer(
		render.NewRemoteStrategy(fake, render.RemoteOptions{}, log),
		render.NewLocalStrategy(author, render.LocalOptions{OutputDir: outDir}, log),
		log,
	)
	o := NewOrchestrator(
		source.Reader{},
		analyze.NewAnalyzer(fake, 0, log),
		analyze.NewPlanner(fake, 0, log),
		renderer,
		log,
	)
	return o, outDir
}

func writeSource(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "minutes.md")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

type para struct {
	style string
	numID string
	text  string
}

func readParagraphs(t *testing.T, path string) []para {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	var out []para
	for _, item := range doc.Document.Body.Items {
		p, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		var pr para
		if p.Properties != nil && p.Properties.Style != nil {
			pr.style = p.Properties.Style.Val
		}
		if p.Properties != nil && p.Properties.NumProperties != nil && p.Properties.NumProperties.NumID != nil {
			pr.numID = p.Properties.NumProperties.NumID.Val
		}
		for _, c := range p.Children {
			if run, ok := c.(*docx.Run); ok {
				for _, rc := range run.Children {
					if txt, ok := rc.(*docx.Text); ok {
						pr.text += txt.Text
					}
				}
			}
		}
		out = append(out, pr)
	}
	return out
}

func TestConvert_EndToEndLocal(t *testing.T) {
	fake := remotetest.New(remotetest.Text("analysis"), remotetest.Text("plan"))
	o, outDir := newTestOrchestrator(t, fake, render.DocxAuthor{})
	path := writeSource(t, "# Weekly sync\n- Budget approved\nThe team met on Monday.\n- Hiring paused\nNext meeting in two weeks.\n")

	res, err := o.Convert(context.Background(), path, false)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, res.Status)
	assert.Equal(t, render.StrategyLocal, res.Strategy)
	assert.True(t, res.Verified)
	assert.Equal(t, "analysis", res.Analysis)
	assert.Equal(t, "plan", res.Plan)
	assert.Equal(t, "markdown", res.SourceFormat)
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, outDir, filepath.Dir(res.ArtifactPath))
	assert.Equal(t, []render.State{render.StateStart, render.StateFallbackLocal, render.StateDone}, res.Trace)
	assert.Len(t, fake.Calls(), 2, "analysis and plan only")

	want := []para{
		{render.HeadingStyle(1), "", "Weekly sync"},
		{render.StyleListBullet, "1", "Budget approved"},
		{"", "", "The team met on Monday."},
		{render.StyleListBullet, "1", "Hiring paused"},
		{"", "", "Next meeting in two weeks."},
	}
	assert.Equal(t, want, readParagraphs(t, res.ArtifactPath))

	zr, err := zip.OpenReader(res.ArtifactPath)
	require.NoError(t, err)
	defer zr.Close()
	styles, err := fs.ReadFile(zr, "word/styles.xml")
	require.NoError(t, err)
	assert.Contains(t, string(styles), `w:styleId="`+render.HeadingStyle(1)+`"`)
	assert.Contains(t, string(styles), `w:styleId="`+render.StyleListBullet+`"`)
	numbering, err := fs.ReadFile(zr, "word/numbering.xml")
	require.NoError(t, err)
	assert.Contains(t, string(numbering), `<w:num w:numId="1"><w:abstractNumId w:val="0"/></w:num>`)
}

func TestConvert_FileNotFoundMakesNoCalls(t *testing.T) {
	fake := remotetest.New(remotetest.Text("unused"))
	o, _ := newTestOrchestrator(t, fake, render.DocxAuthor{})

	res, err := o.Convert(context.Background(), "/nonexistent/path.md", true)
	require.Error(t, err)
	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, KindFileNotFound, Classify(err))
	assert.ErrorIs(t, err, source.ErrFileNotFound)
	assert.Empty(t, fake.Calls())

	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, "read", f.Stage)
}

func TestConvert_ReadErrorMakesNoCalls(t *testing.T) {
	fake := remotetest.New(remotetest.Text("unused"))
	o, _ := newTestOrchestrator(t, fake, render.DocxAuthor{})

	_, err := o.Convert(context.Background(), t.TempDir(), true)
	assert.Equal(t, KindReadError, Classify(err))
	assert.Empty(t, fake.Calls())
}

func TestConvert_AllRemoteFailuresFallBackToLocal(t *testing.T) {
	fake := remotetest.AlwaysFail()
	o, _ := newTestOrchestrator(t, fake, render.DocxAuthor{})
	path := writeSource(t, "# A\n- b\n")

	res, err := o.Convert(context.Background(), path, true)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, res.Status)
	assert.Equal(t, render.StrategyLocal, res.Strategy)
	assert.FileExists(t, res.ArtifactPath)
	assert.Empty(t, res.Analysis)
	assert.Empty(t, res.Plan)

	require.Len(t, res.StageErrors, 1)
	assert.Equal(t, "analyze", res.StageErrors[0].Stage)
	assert.Equal(t, KindRemoteServiceError, res.StageErrors[0].Kind)
	assert.Len(t, fake.Calls(), 1, "no remote calls after the first failure")
}

func TestConvert_PlanFailureSkipsRemoteRender(t *testing.T) {
	fake := remotetest.New(remotetest.Text("analysis"), remotetest.Fail("down"))
	o, _ := newTestOrchestrator(t, fake, render.DocxAuthor{})
	path := writeSource(t, "# A\n")

	res, err := o.Convert(context.Background(), path, true)
	require.NoError(t, err)
	assert.Equal(t, "analysis", res.Analysis)
	require.Len(t, res.StageErrors, 1)
	assert.Equal(t, "plan", res.StageErrors[0].Stage)
	assert.Equal(t, render.StrategyLocal, res.Strategy)
	assert.Len(t, fake.Calls(), 2)
}

func TestConvert_RemoteRenderFailureFallsBack(t *testing.T) {
	fake := remotetest.New(remotetest.Text("analysis"), remotetest.Text("plan"), remotetest.Fail("word server down"))
	o, _ := newTestOrchestrator(t, fake, render.DocxAuthor{})
	path := writeSource(t, "# A\n")

	res, err := o.Convert(context.Background(), path, true)
	require.NoError(t, err)
	assert.Equal(t, render.StrategyLocal, res.Strategy)
	assert.Equal(t, []render.State{render.StateStart, render.StateTryRemote, render.StateFallbackLocal, render.StateDone}, res.Trace)
	require.Len(t, res.StageErrors, 1)
	assert.Equal(t, "try_remote", res.StageErrors[0].Stage)
	assert.Len(t, fake.Calls(), 3)
}

func TestConvert_RemoteSuccessIsUnverified(t *testing.T) {
	fake := remotetest.New(
		remotetest.Text("analysis"),
		remotetest.Text("plan"),
		remotetest.Reply{Response: remote.Response{
			Text:            "Document saved as C:/docs/minutes.docx",
			ToolInvocations: []remote.ToolInvocation{{ID: "t1", Name: "save_document"}},
		}},
	)
	o, _ := newTestOrchestrator(t, fake, render.DocxAuthor{})
	path := writeSource(t, "# A\n")

	res, err := o.Convert(context.Background(), path, true)
	require.NoError(t, err)
	assert.Equal(t, render.StrategyRemote, res.Strategy)
	assert.False(t, res.Verified)
	assert.Equal(t, "C:/docs/minutes.docx", res.ArtifactPath)
	assert.Equal(t, "Document saved as C:/docs/minutes.docx", res.RemoteText)
	require.Len(t, res.ToolInvocations, 1)
	assert.Empty(t, res.StageErrors)
}

func TestConvert_MissingDependency(t *testing.T) {
	o, _ := newTestOrchestrator(t, remotetest.AlwaysFail(), nil)
	path := writeSource(t, "# A\n")

	res, err := o.Convert(context.Background(), path, true)
	require.Error(t, err)
	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, KindMissingDependency, Classify(err))
	assert.Equal(t, render.StateFailed, res.Trace[len(res.Trace)-1])
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want FailureKind
	}{
		{nil, ""},
		{source.ErrFileNotFound, KindFileNotFound},
		{source.ErrRead, KindReadError},
		{&remote.ServiceError{Op: "send"}, KindRemoteServiceError},
		{render.ErrEmptyRemoteResult, KindRemoteServiceError},
		{render.ErrMissingDependency, KindMissingDependency},
		{render.ErrRender, KindRenderError},
		{&Failure{Kind: KindRenderError, Err: errors.New("x")}, KindRenderError},
		{errors.New("other"), KindUnknown},
	}
	for _, tt := range tests {
		if got := Classify(tt.err); got != tt.want {
			t.Errorf("Classify(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
