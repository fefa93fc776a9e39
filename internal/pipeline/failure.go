package pipeline

import (
	"errors"
	"fmt"

	"github.com/dgallion1/minutesdoc/internal/remote"
	"github.com/dgallion1/minutesdoc/internal/render"
	"github.com/dgallion1/minutesdoc/internal/source"
)

// FailureKind categorizes why a conversion stage failed.
type FailureKind string

const (
	KindFileNotFound       FailureKind = "file_not_found"
	KindReadError          FailureKind = "read_error"
	KindRemoteServiceError FailureKind = "remote_service_error"
	KindMissingDependency  FailureKind = "missing_dependency"
	KindRenderError        FailureKind = "render_error"
	KindUnknown            FailureKind = "unknown"
)

// Failure is the error returned by Convert. It carries exactly one Kind.
type Failure struct {
	Kind  FailureKind
	Stage string
	Err   error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s failed (%s): %v", f.Stage, f.Kind, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// Classify maps an error from any stage onto its kind.
func Classify(err error) FailureKind {
	var f *Failure
	switch {
	case err == nil:
		return ""
	case errors.As(err, &f):
		return f.Kind
	case errors.Is(err, source.ErrFileNotFound):
		return KindFileNotFound
	case errors.Is(err, source.ErrRead):
		return KindReadError
	case errors.Is(err, render.ErrMissingDependency):
		return KindMissingDependency
	case errors.Is(err, render.ErrRender):
		return KindRenderError
	case remote.IsServiceError(err), errors.Is(err, render.ErrEmptyRemoteResult):
		return KindRemoteServiceError
	default:
		return KindUnknown
	}
}

func newFailure(stage string, err error) *Failure {
	return &Failure{Kind: Classify(err), Stage: stage, Err: err}
}
