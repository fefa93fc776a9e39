// Package render produces the final document through one of two strategies:
// the remote service driving document-construction tools, or local authoring
// with go-docx. A small state machine owns the fallback between them.
package render

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dgallion1/minutesdoc/internal/analyze"
	"github.com/dgallion1/minutesdoc/internal/remote"
	"github.com/dgallion1/minutesdoc/internal/source"
)

var (
	ErrMissingDependency = errors.New("local document authoring unavailable")
	ErrRender            = errors.New("render failed")
	ErrEmptyRemoteResult = errors.New("remote render returned no result")
)

// State is a step of the render state machine.
type State string

const (
	StateStart         State = "start"
	StateTryRemote     State = "try_remote"
	StateSuccess       State = "success"
	StateFallbackLocal State = "fallback_local"
	StateDone          State = "done"
	StateFailed        State = "failed"
)

const (
	StrategyRemote = "remote"
	StrategyLocal  = "local"
)

type Input struct {
	Doc  source.Document
	Plan analyze.Plan
}

// Result is what a single strategy produced.
type Result struct {
	ArtifactPath    string
	Text            string
	ToolInvocations []remote.ToolInvocation
	// Verified is true when the artifact was written and checked locally.
	Verified bool
}

// Strategy renders one document.
type Strategy interface {
	Name() string
	Render(ctx context.Context, in Input) (Result, error)
}

// Outcome is the renderer's final report.
type Outcome struct {
	State    State
	Strategy string
	Result
	Trace []State
	// RemoteErr is why the remote strategy was abandoned, if it was tried.
	RemoteErr error
}

type Renderer struct {
	remote Strategy
	local  Strategy
	log    *slog.Logger
}

// NewRenderer takes either strategy as nil. A nil remote means local only; a
// nil local makes any fallback fail with ErrMissingDependency.
func NewRenderer(remote, local Strategy, log *slog.Logger) *Renderer {
	if log == nil {
		log = slog.Default()
	}
	return &Renderer{remote: remote, local: local, log: log}
}

// Render runs the state machine. The remote strategy is tried at most once.
// The returned error is non-nil exactly when the final state is failed.
func (r *Renderer) Render(ctx context.Context, in Input, tryRemote bool) (Outcome, error) {
	var out Outcome
	var failure error

	state := StateStart
	for {
		out.Trace = append(out.Trace, state)
		switch state {
		case StateStart:
			if tryRemote && r.remote != nil {
				state = StateTryRemote
			} else {
				state = StateFallbackLocal
			}

		case StateTryRemote:
			res, err := r.remote.Render(ctx, in)
			if err != nil {
				r.log.Warn("remote render unavailable, falling back to local", "error", err)
				out.RemoteErr = err
				state = StateFallbackLocal
				continue
			}
			out.Result = res
			out.Strategy = r.remote.Name()
			state = StateSuccess

		case StateSuccess:
			state = StateDone

		case StateFallbackLocal:
			if r.local == nil {
				failure = ErrMissingDependency
				state = StateFailed
				continue
			}
			res, err := r.local.Render(ctx, in)
			if err != nil {
				failure = err
				state = StateFailed
				continue
			}
			out.Result = res
			out.Strategy = r.local.Name()
			state = StateDone

		case StateDone:
			out.State = StateDone
			return out, nil

		case StateFailed:
			out.State = StateFailed
			r.log.Error("render failed", "error", failure)
			return out, failure
		}
	}
}
