// Package remotetest provides a scripted remote.Invoker for tests.
package remotetest

import (
	"context"
	"sync"

	"github.com/dgallion1/minutesdoc/internal/remote"
)

// Reply is one scripted outcome.
type Reply struct {
	Response remote.Response
	Err      error
}

// Fake returns scripted replies in order and records every request. Once the
// script runs out, the last reply repeats; an empty script always fails.
type Fake struct {
	mu      sync.Mutex
	replies []Reply
	calls   []remote.Request
}

func New(replies ...Reply) *Fake {
	return &Fake{replies: replies}
}

// Text is a successful reply with only text.
func Text(s string) Reply {
	return Reply{Response: remote.Response{Text: s}}
}

// Fail is a reply that fails with a service error.
func Fail(msg string) Reply {
	return Reply{Err: &remote.ServiceError{Op: "status", StatusCode: 503, Message: msg}}
}

// AlwaysFail returns a fake whose every call fails.
func AlwaysFail() *Fake {
	return New(Fail("unavailable"))
}

func (f *Fake) Invoke(ctx context.Context, req remote.Request) (remote.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, req)
	if len(f.replies) == 0 {
		return remote.Response{}, &remote.ServiceError{Op: "invoke", Message: "no scripted reply"}
	}
	idx := len(f.calls) - 1
	if idx >= len(f.replies) {
		idx = len(f.replies) - 1
	}
	r := f.replies[idx]
	return r.Response, r.Err
}

// Calls returns a copy of the recorded requests.
func (f *Fake) Calls() []remote.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]remote.Request(nil), f.calls...)
}

var _ remote.Invoker = (*Fake)(nil)
