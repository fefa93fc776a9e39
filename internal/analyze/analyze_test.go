package analyze

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/minutesdoc/internal/remote"
	"github.com/dgallion1/minutesdoc/internal/remote/remotetest"
	"github.com/dgallion1/minutesdoc/internal/source"
)

func TestAnalyze_ReturnsTextVerbatim(t *testing.T) {
	fake := remotetest.New(remotetest.Text("  Title: Weekly sync\n"))
	doc := source.Document{Path: "m.md", RawText: "# Weekly sync\n- item"}

	got, err := NewAnalyzer(fake, 0, nil).Analyze(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, "  Title: Weekly sync\n", got.Summary)

	calls := fake.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, DefaultAnalysisMaxTokens, calls[0].MaxTokens)
	assert.Equal(t, remote.OpAnalysis, calls[0].Op)
	assert.Empty(t, calls[0].Capabilities)
	assert.Contains(t, calls[0].Prompt, doc.RawText)
	assert.Contains(t, calls[0].Prompt, "Title: Weekly sync")
	assert.Contains(t, calls[0].Prompt, "Bullet items: 1")
}

func TestAnalyze_PromptIsDeterministic(t *testing.T) {
	fake := remotetest.New(remotetest.Text("ok"))
	doc := source.Document{RawText: "# A\n1. x\n"}
	a := NewAnalyzer(fake, 0, nil)

	_, err := a.Analyze(context.Background(), doc)
	require.NoError(t, err)
	_, err = a.Analyze(context.Background(), doc)
	require.NoError(t, err)

	calls := fake.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, calls[0].Prompt, calls[1].Prompt)
}

func TestAnalyze_PropagatesServiceError(t *testing.T) {
	fake := remotetest.AlwaysFail()
	_, err := NewAnalyzer(fake, 0, nil).Analyze(context.Background(), source.Document{RawText: "x"})
	require.Error(t, err)
	assert.True(t, remote.IsServiceError(err))
	assert.Len(t, fake.Calls(), 1, "no retry")
}

func TestPlan_UsesExcerptAndAnalysis(t *testing.T) {
	fake := remotetest.New(remotetest.Text("Step 1: create_document"))
	long := strings.Repeat("a", 900) + strings.Repeat("b", 200) + "TAIL"
	doc := source.Document{RawText: long}

	got, err := NewPlanner(fake, 0, nil).Plan(context.Background(), doc, Analysis{Summary: "ANALYSIS-TEXT"})
	require.NoError(t, err)
	assert.Equal(t, "Step 1: create_document", got.Steps)

	calls := fake.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, DefaultPlanMaxTokens, calls[0].MaxTokens)
	assert.Equal(t, remote.OpPlan, calls[0].Op)
	assert.Contains(t, calls[0].Prompt, "ANALYSIS-TEXT")
	assert.Contains(t, calls[0].Prompt, strings.Repeat("a", 900)+strings.Repeat("b", 100)+"...")
	assert.NotContains(t, calls[0].Prompt, "TAIL")
}

func TestPlan_PropagatesServiceError(t *testing.T) {
	_, err := NewPlanner(remotetest.AlwaysFail(), 0, nil).Plan(context.Background(), source.Document{}, Analysis{})
	assert.True(t, remote.IsServiceError(err))
}

func TestExcerpt_CountsCharacters(t *testing.T) {
	assert.Equal(t, "short", excerpt("short", 10))
	assert.Equal(t, "議事録...", excerpt("議事録です", 3))
}

func TestBuildRenderPrompt(t *testing.T) {
	p := BuildRenderPrompt("# Minutes", "Step 1")
	assert.Contains(t, p, "# Minutes")
	assert.Contains(t, p, "Step 1")
	assert.Contains(t, p, "save_document")
}
