// Package modeladapter defines the host-facing completion contract and the
// shared HTTP plumbing used by provider adapters.
//
// It contains:
//   - [Completer] and [Identifier] interfaces a host orchestration framework consumes
//   - embeddable [ModelAdapter] base struct with request building, auth, custom headers and a single-shot JSON POST
//   - the error kinds [ConfigurationError], [RemoteAPIError] and [MalformedResponseError]
//   - composable [Middleware] (timeout, recovery, logging, output guardrail)
//   - [github.com/germanamz/openrouter/pkg/modeladapter/usage]: thread-safe token usage tracker
//
// The HTTP client a ModelAdapter uses must be safe for concurrent use; the
// adapter adds no locking of its own around it. This package contains no
// provider-specific code.
package modeladapter
