// Package provider abstracts the interchangeable LLM backends behind a
// single completion capability.
//
// # Adding a new backend
//
// Implement Completer in a subpackage over a raw client from internal/api,
// then extend the switch in New. The backend set is closed on purpose: a
// missing case is a compile-time review item, not a runtime type check.
package provider

import "context"

// Completer is the single capability a backend exposes: one prompt in, the
// raw text of the model's first reply out. No backend-specific types cross
// this boundary.
type Completer interface {
	Name() string
	Complete(ctx context.Context, prompt string, temperature float64) (string, error)
}
