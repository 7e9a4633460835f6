// Package remotetest provides a scripted in-memory remote.Caller for tests.
package remotetest

import (
	"context"
	"fmt"
	"sync"

	"github.com/and161185/rutld-connector/internal/remote"
)

// Call is one recorded invocation.
type Call struct {
	Func   string
	Params map[string]string
}

// Handler answers one function.
type Handler func(params map[string]string) (*remote.Response, error)

// Recorder records calls and answers them from per-function handlers.
// Functions without a handler get an empty response.
type Recorder struct {
	mu       sync.Mutex
	handlers map[string]Handler
	calls    []Call
}

// New returns an empty recorder.
func New() *Recorder { return &Recorder{handlers: map[string]Handler{}} }

// Handle installs h for fn.
func (r *Recorder) Handle(fn string, h Handler) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[fn] = h
	return r
}

// Values answers fn with fixed named values.
func (r *Recorder) Values(fn string, values map[string]string) *Recorder {
	return r.Handle(fn, func(map[string]string) (*remote.Response, error) {
		return &remote.Response{Values: values}, nil
	})
}

// Elems answers fn with a fixed listing.
func (r *Recorder) Elems(fn string, elems ...map[string]string) *Recorder {
	return r.Handle(fn, func(map[string]string) (*remote.Response, error) {
		return &remote.Response{Elems: elems, Values: map[string]string{}}, nil
	})
}

// Fail answers fn with err.
func (r *Recorder) Fail(fn string, err error) *Recorder {
	return r.Handle(fn, func(map[string]string) (*remote.Response, error) { return nil, err })
}

// Call implements remote.Caller.
func (r *Recorder) Call(ctx context.Context, fn string, params map[string]string) (*remote.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cp := make(map[string]string, len(params))
	for k, v := range params {
		cp[k] = v
	}
	r.mu.Lock()
	r.calls = append(r.calls, Call{Func: fn, Params: cp})
	h := r.handlers[fn]
	r.mu.Unlock()

	if h == nil {
		return &remote.Response{Values: map[string]string{}}, nil
	}
	return h(cp)
}

// Calls returns all recorded calls, optionally only those of fn.
func (r *Recorder) Calls(fn ...string) []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(fn) == 0 {
		return append([]Call(nil), r.calls...)
	}
	var out []Call
	for _, c := range r.calls {
		if c.Func == fn[0] {
			out = append(out, c)
		}
	}
	return out
}

// Funcs returns the recorded function names in order.
func (r *Recorder) Funcs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	for i, c := range r.calls {
		out[i] = c.Func
	}
	return out
}

// Last returns the last call of fn; it panics when there is none.
func (r *Recorder) Last(fn string) Call {
	calls := r.Calls(fn)
	if len(calls) == 0 {
		panic(fmt.Sprintf("remotetest: no call of %s", fn))
	}
	return calls[len(calls)-1]
}
