// Package providers groups concrete completion adapters.
//
// It is organized into sub-packages:
//   - [github.com/germanamz/openrouter/pkg/providers/openrouter]: Completer for the OpenRouter chat completions API
//
// Shared HTTP plumbing, error kinds and middleware live in
// [github.com/germanamz/openrouter/pkg/modeladapter].
package providers
