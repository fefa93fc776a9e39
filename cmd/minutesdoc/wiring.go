package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/minutesdoc/internal/analyze"
	"github.com/dgallion1/minutesdoc/internal/capability"
	"github.com/dgallion1/minutesdoc/internal/config"
	"github.com/dgallion1/minutesdoc/internal/pipeline"
	"github.com/dgallion1/minutesdoc/internal/remote"
	"github.com/dgallion1/minutesdoc/internal/render"
	"github.com/dgallion1/minutesdoc/internal/source"
)

// statsWindow is how far back remote latency stats reach.
const statsWindow = 15 * time.Minute

// app holds the components built from configuration. Nothing in it carries
// per-conversion state.
type app struct {
	client       *remote.Client
	stats        *remote.Stats
	catalog      *capability.Catalog
	orchestrator *pipeline.Orchestrator
}

func newRemoteClient(c config.Config, stats *remote.Stats, log *slog.Logger) *remote.Client {
	return remote.NewClient(remote.ClientConfig{
		APIKey:  c.AnthropicAPIKey,
		Model:   c.AnthropicModel,
		BaseURL: c.AnthropicBaseURL,
		Timeout: c.RemoteTimeout,
	}, stats, log)
}

// buildApp wires the conversion pipeline. Setting LOCAL_RENDER=false leaves
// the local strategy without an author, so a failed remote render ends in a
// missing dependency error.
func buildApp(c config.Config, log *slog.Logger) (*app, error) {
	catalog, err := c.LoadCatalog()
	if err != nil {
		return nil, err
	}
	docCap, err := catalog.Lookup(c.DocumentCapability)
	if err != nil {
		return nil, fmt.Errorf("%w: DOCUMENT_CAPABILITY: %w", config.ErrInvalidConfig, err)
	}

	stats := remote.NewStats(statsWindow)
	client := newRemoteClient(c, stats, log)

	var author render.Author
	if c.LocalRender {
		author = render.DocxAuthor{}
	}

	renderer := render.NewRenderer(
		render.NewRemoteStrategy(client, render.RemoteOptions{
			Capabilities:   []capability.Capability{docCap},
			MaxTokens:      c.RenderMaxTokens,
			RequireToolUse: c.RequireToolUse,
		}, log),
		render.NewLocalStrategy(author, render.LocalOptions{
			OutputDir: c.OutputDir,
			Prefix:    c.OutputPrefix,
		}, log),
		log,
	)

	orch := pipeline.NewOrchestrator(
		source.Reader{PDFFallbackPdftotext: c.PDFFallbackPdftotext},
		analyze.NewAnalyzer(client, c.AnalysisMaxTokens, log),
		analyze.NewPlanner(client, c.PlanMaxTokens, log),
		renderer,
		log,
	)

	return &app{
		client:       client,
		stats:        stats,
		catalog:      catalog,
		orchestrator: orch,
	}, nil
}
