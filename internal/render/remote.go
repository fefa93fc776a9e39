package render

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/dgallion1/minutesdoc/internal/analyze"
	"github.com/dgallion1/minutesdoc/internal/capability"
	"github.com/dgallion1/minutesdoc/internal/remote"
)

const DefaultRenderMaxTokens = 3000

// RemoteStrategy asks the service to build the document with its
// document-construction tools. The artifact lives wherever the tool server
// saved it, so the result is never marked verified.
type RemoteStrategy struct {
	invoker        remote.Invoker
	capabilities   []capability.Capability
	maxTokens      int
	requireToolUse bool
	log            *slog.Logger
}

type RemoteOptions struct {
	Capabilities []capability.Capability
	MaxTokens    int
	// RequireToolUse treats a reply without any successful tool invocation
	// as empty.
	RequireToolUse bool
}

func NewRemoteStrategy(invoker remote.Invoker, opts RemoteOptions, log *slog.Logger) *RemoteStrategy {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultRenderMaxTokens
	}
	if log == nil {
		log = slog.Default()
	}
	return &RemoteStrategy{
		invoker:        invoker,
		capabilities:   opts.Capabilities,
		maxTokens:      opts.MaxTokens,
		requireToolUse: opts.RequireToolUse,
		log:            log,
	}
}

func (s *RemoteStrategy) Name() string { return StrategyRemote }

func (s *RemoteStrategy) Render(ctx context.Context, in Input) (Result, error) {
	resp, err := s.invoker.Invoke(ctx, remote.Request{
		Op:           remote.OpRender,
		Prompt:       analyze.BuildRenderPrompt(in.Doc.RawText, in.Plan.Steps),
		MaxTokens:    s.maxTokens,
		Capabilities: s.capabilities,
	})
	if err != nil {
		return Result{}, err
	}
	if strings.TrimSpace(resp.Text) == "" {
		return Result{}, ErrEmptyRemoteResult
	}
	if s.requireToolUse && !resp.HasToolUse() {
		return Result{}, fmt.Errorf("%w: no tool invocation reported", ErrEmptyRemoteResult)
	}

	res := Result{
		Text:            resp.Text,
		ToolInvocations: resp.ToolInvocations,
		ArtifactPath:    reportedPath(resp),
	}
	s.log.Info("remote render complete",
		"tools", len(resp.ToolInvocations),
		"reported_path", res.ArtifactPath,
	)
	return res, nil
}

var docxPathRe = regexp.MustCompile("[^\\s\"'`()<>\\[\\]]+\\.docx")

// reportedPath finds a .docx path the service claims to have written, in the
// reply text first and then in tool results.
func reportedPath(resp remote.Response) string {
	if m := docxPathRe.FindString(resp.Text); m != "" {
		return m
	}
	for _, ti := range resp.ToolInvocations {
		if ti.Result == nil || ti.Result.IsError {
			continue
		}
		if m := docxPathRe.FindString(ti.Result.Text); m != "" {
			return m
		}
	}
	return ""
}
