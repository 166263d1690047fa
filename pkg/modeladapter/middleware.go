package modeladapter

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Middleware wraps a Completer, returning a new Completer with added behaviour.
type Middleware func(next Completer) Completer

// Chain composes multiple middleware into a single Middleware.
// The first middleware in the list is the outermost (runs first).
func Chain(mws ...Middleware) Middleware {
	return func(next Completer) Completer {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}

// --- Timeout middleware ---

// Timeout returns a Middleware that wraps the call's context with a deadline.
// A deadline hit while the request is in flight surfaces as a *RemoteAPIError
// whose Timeout method reports true.
func Timeout(d time.Duration) Middleware {
	return func(next Completer) Completer {
		return CompleterFunc(func(ctx context.Context, prompt string, stop []string) (string, error) {
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()

			return next.Complete(ctx, prompt, stop)
		})
	}
}

// --- Recovery middleware ---

// Recovery returns a Middleware that catches panics and converts them to errors.
func Recovery() Middleware {
	return func(next Completer) Completer {
		return CompleterFunc(func(ctx context.Context, prompt string, stop []string) (text string, err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("completer panicked: %v", r)
				}
			}()

			return next.Complete(ctx, prompt, stop)
		})
	}
}

// --- Logger middleware ---

// Logger returns a Middleware that logs the call's start, duration, and error.
// Prompts and completions are logged by length only.
func Logger(log *slog.Logger, name string) Middleware {
	return func(next Completer) Completer {
		return CompleterFunc(func(ctx context.Context, prompt string, stop []string) (string, error) {
			log.DebugContext(ctx, "completion started",
				"profile", name,
				"prompt_len", len(prompt),
			)

			start := time.Now()

			text, err := next.Complete(ctx, prompt, stop)

			duration := time.Since(start)

			if err != nil {
				log.ErrorContext(ctx, "completion failed",
					"profile", name,
					"duration", duration,
					"error", err,
				)
			} else {
				log.InfoContext(ctx, "completion finished",
					"profile", name,
					"duration", duration,
					"completion_len", len(text),
				)
			}

			return text, err
		})
	}
}

// --- OutputGuardrail middleware ---

// OutputGuardrail returns a Middleware that validates the completion. If
// check returns an error, that error is returned instead of the text.
func OutputGuardrail(check func(string) error) Middleware {
	return func(next Completer) Completer {
		return CompleterFunc(func(ctx context.Context, prompt string, stop []string) (string, error) {
			text, err := next.Complete(ctx, prompt, stop)
			if err != nil {
				return text, err
			}

			if checkErr := check(text); checkErr != nil {
				return "", checkErr
			}

			return text, nil
		})
	}
}
