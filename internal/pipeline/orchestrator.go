package pipeline

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/minutesdoc/internal/analyze"
	"github.com/dgallion1/minutesdoc/internal/remote"
	"github.com/dgallion1/minutesdoc/internal/render"
	"github.com/dgallion1/minutesdoc/internal/source"
)

// Status is the overall outcome of one conversion.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// StageError records a non-fatal stage failure.
type StageError struct {
	Stage string      `json:"stage"`
	Kind  FailureKind `json:"kind"`
	Error string      `json:"error"`
}

// Result is the full record of one conversion. It is returned even when the
// conversion fails, so callers can inspect how far it got.
type Result struct {
	ID              string                  `json:"id"`
	SourcePath      string                  `json:"source_path"`
	SourceFormat    string                  `json:"source_format,omitempty"`
	SourceHash      string                  `json:"source_hash,omitempty"`
	Analysis        string                  `json:"analysis,omitempty"`
	Plan            string                  `json:"plan,omitempty"`
	Status          Status                  `json:"status"`
	Strategy        string                  `json:"strategy,omitempty"`
	ArtifactPath    string                  `json:"artifact_path,omitempty"`
	RemoteText      string                  `json:"remote_text,omitempty"`
	ToolInvocations []remote.ToolInvocation `json:"tool_invocations,omitempty"`
	Verified        bool                    `json:"verified"`
	Trace           []render.State          `json:"trace,omitempty"`
	StageErrors     []StageError            `json:"stage_errors,omitempty"`
	Duration        time.Duration           `json:"duration_ns"`
}

func (r *Result) addStageError(stage string, err error) {
	r.StageErrors = append(r.StageErrors, StageError{
		Stage: stage,
		Kind:  Classify(err),
		Error: err.Error(),
	})
}

// Converter is what the job queue and API need from the orchestrator.
type Converter interface {
	Convert(ctx context.Context, path string, preferRemote bool) (*Result, error)
}

// Orchestrator sequences read, analyze, plan and render for one document.
// It holds no per-conversion state; every Convert call is independent.
type Orchestrator struct {
	reader   source.Reader
	analyzer *analyze.Analyzer
	planner  *analyze.Planner
	renderer *render.Renderer
	log      *slog.Logger
}

func NewOrchestrator(reader source.Reader, analyzer *analyze.Analyzer, planner *analyze.Planner, renderer *render.Renderer, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{
		reader:   reader,
		analyzer: analyzer,
		planner:  planner,
		renderer: renderer,
		log:      log,
	}
}

// Convert runs one conversion. A read failure aborts before any remote call.
// A remote failure in analysis or planning is recorded and stops further
// remote calls, so rendering goes straight to the local strategy. The error,
// when non-nil, is always a *Failure.
func (o *Orchestrator) Convert(ctx context.Context, path string, preferRemote bool) (*Result, error) {
	start := time.Now()
	res := &Result{
		ID:         uuid.NewString(),
		SourcePath: path,
		Status:     StatusFailed,
	}
	log := o.log.With("conversion_id", res.ID, "source", path)
	defer func() { res.Duration = time.Since(start) }()

	doc, err := o.reader.Read(path)
	if err != nil {
		log.Error("read failed", "error", err)
		return res, newFailure("read", err)
	}
	res.SourceFormat = doc.Format
	res.SourceHash = ContentHashHex([]byte(doc.RawText))
	log.Info("source loaded", "format", doc.Format, "bytes", len(doc.RawText))

	remoteHealthy := true

	analysis, err := o.analyzer.Analyze(ctx, doc)
	if err != nil {
		log.Warn("structure analysis failed, skipping remote stages", "error", err)
		res.addStageError("analyze", err)
		remoteHealthy = false
	} else {
		res.Analysis = analysis.Summary
	}

	var plan analyze.Plan
	if remoteHealthy {
		plan, err = o.planner.Plan(ctx, doc, analysis)
		if err != nil {
			log.Warn("plan generation failed, skipping remote render", "error", err)
			res.addStageError("plan", err)
			remoteHealthy = false
		} else {
			res.Plan = plan.Steps
		}
	}

	out, err := o.renderer.Render(ctx, render.Input{Doc: doc, Plan: plan}, preferRemote && remoteHealthy)
	res.Trace = out.Trace
	if out.RemoteErr != nil {
		res.addStageError(string(render.StateTryRemote), out.RemoteErr)
	}
	if err != nil {
		log.Error("conversion failed", "error", err, "trace", out.Trace)
		return res, newFailure("render", err)
	}

	res.Status = StatusCompleted
	res.Strategy = out.Strategy
	res.ArtifactPath = out.ArtifactPath
	res.RemoteText = out.Text
	res.ToolInvocations = out.ToolInvocations
	res.Verified = out.Verified

	log.Info("conversion complete",
		"strategy", res.Strategy,
		"artifact", res.ArtifactPath,
		"verified", res.Verified,
		"ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
