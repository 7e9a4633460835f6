// Package remote issues named function calls with flat string parameters
// against a billing panel API, used both for the registrar and for the
// local billing host.
package remote

import "context"

// Caller performs one remote function call.
type Caller interface {
	Call(ctx context.Context, fn string, params map[string]string) (*Response, error)
}

// CallerFunc adapts a function to Caller.
type CallerFunc func(ctx context.Context, fn string, params map[string]string) (*Response, error)

// Call implements Caller.
func (f CallerFunc) Call(ctx context.Context, fn string, params map[string]string) (*Response, error) {
	return f(ctx, fn, params)
}

// Response exposes a listing (Elems) and named scalar values. Nested values
// are flattened into dotted keys ("domaincontact.id").
type Response struct {
	Elems  []map[string]string
	Values map[string]string
}

// Value returns a named value or "" when absent.
func (r *Response) Value(key string) string {
	if r == nil {
		return ""
	}
	return r.Values[key]
}

// Lookup returns a named value and whether it was present and non-empty.
func (r *Response) Lookup(key string) (string, bool) {
	v := r.Value(key)
	return v, v != ""
}
