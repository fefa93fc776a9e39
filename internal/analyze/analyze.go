// Package analyze wraps the two single-shot prompts that precede rendering:
// structure analysis and generation planning. Replies are used verbatim.
package analyze

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/minutesdoc/internal/markdown"
	"github.com/dgallion1/minutesdoc/internal/remote"
	"github.com/dgallion1/minutesdoc/internal/source"
)

const (
	DefaultAnalysisMaxTokens = 2000
	DefaultPlanMaxTokens     = 3000
)

// Analysis is the remote service's description of the document structure.
type Analysis struct {
	Summary string `json:"summary"`
}

// Plan is the ordered instruction text for building the document.
type Plan struct {
	Steps string `json:"steps"`
}

type Analyzer struct {
	invoker   remote.Invoker
	maxTokens int
	log       *slog.Logger
}

func NewAnalyzer(invoker remote.Invoker, maxTokens int, log *slog.Logger) *Analyzer {
	if maxTokens <= 0 {
		maxTokens = DefaultAnalysisMaxTokens
	}
	if log == nil {
		log = slog.Default()
	}
	return &Analyzer{invoker: invoker, maxTokens: maxTokens, log: log}
}

// Analyze sends the source with its local outline. Errors from the invoker
// are returned wrapped, so remote.IsServiceError still matches.
func (a *Analyzer) Analyze(ctx context.Context, doc source.Document) (Analysis, error) {
	outline := markdown.ComputeOutline([]byte(doc.RawText))
	prompt := BuildAnalysisPrompt(doc.RawText, outline.String())
	if line := InstructionLike(doc.RawText); line != "" {
		// Sent anyway; minutes sometimes quote such phrases.
		a.log.Warn("source contains instruction-like text", "line", truncateLine(line, 80))
	}
	a.log.Debug("sending structure analysis", "prompt_tokens_est", EstimateTokens(prompt), "max_tokens", a.maxTokens)

	resp, err := a.invoker.Invoke(ctx, remote.Request{Op: remote.OpAnalysis, Prompt: prompt, MaxTokens: a.maxTokens})
	if err != nil {
		return Analysis{}, fmt.Errorf("analyze %s: %w", doc.Path, err)
	}
	a.log.Debug("structure analysis complete", "chars", len(resp.Text))
	return Analysis{Summary: resp.Text}, nil
}

type Planner struct {
	invoker   remote.Invoker
	maxTokens int
	log       *slog.Logger
}

func NewPlanner(invoker remote.Invoker, maxTokens int, log *slog.Logger) *Planner {
	if maxTokens <= 0 {
		maxTokens = DefaultPlanMaxTokens
	}
	if log == nil {
		log = slog.Default()
	}
	return &Planner{invoker: invoker, maxTokens: maxTokens, log: log}
}

func (p *Planner) Plan(ctx context.Context, doc source.Document, analysis Analysis) (Plan, error) {
	prompt := BuildPlanPrompt(doc.RawText, analysis.Summary)
	p.log.Debug("sending generation plan", "prompt_tokens_est", EstimateTokens(prompt), "max_tokens", p.maxTokens)

	resp, err := p.invoker.Invoke(ctx, remote.Request{Op: remote.OpPlan, Prompt: prompt, MaxTokens: p.maxTokens})
	if err != nil {
		return Plan{}, fmt.Errorf("plan %s: %w", doc.Path, err)
	}
	p.log.Debug("generation plan complete", "chars", len(resp.Text))
	return Plan{Steps: resp.Text}, nil
}
