package modeladapter

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// RedactedPlaceholder replaces secrets in error text.
const RedactedPlaceholder = "[REDACTED]"

// Redact replaces every occurrence of secret in s. An empty secret leaves s unchanged.
func Redact(s, secret string) string {
	if secret == "" {
		return s
	}
	return strings.ReplaceAll(s, secret, RedactedPlaceholder)
}

// ConfigurationError reports an invalid or missing configuration field.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// RemoteAPIError reports a failed call to the remote API: either a non-2xx
// response (StatusCode and Body set) or a transport failure (StatusCode 0, Err set).
type RemoteAPIError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration // Parsed from Retry-After on 429 responses.
	Err        error
}

func (e *RemoteAPIError) Error() string {
	if e.StatusCode == 0 {
		if e.Timeout() {
			return fmt.Sprintf("remote api: request timed out: %v", e.Err)
		}
		return fmt.Sprintf("remote api: request failed: %v", e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("remote api: status %d: %v", e.StatusCode, e.Err)
	}
	if e.RetryAfter > 0 {
		return fmt.Sprintf("remote api: status %d (retry after %s): %s", e.StatusCode, e.RetryAfter, e.Body)
	}
	return fmt.Sprintf("remote api: status %d: %s", e.StatusCode, e.Body)
}

func (e *RemoteAPIError) Unwrap() error { return e.Err }

// Timeout reports whether the call failed because a deadline was exceeded.
func (e *RemoteAPIError) Timeout() bool {
	if e.Err == nil {
		return false
	}
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(e.Err, &ne) && ne.Timeout()
}

// MalformedResponseError reports a 2xx response whose body is not valid JSON
// or lacks the expected completion path.
type MalformedResponseError struct {
	Reason string
	Body   string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed response: %s: %v", e.Reason, e.Err)
	}
	return "malformed response: " + e.Reason
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// scrubbedError hides a secret from the message of err while keeping it
// reachable through errors.Is and errors.As.
type scrubbedError struct {
	msg string
	err error
}

func (e *scrubbedError) Error() string { return e.msg }
func (e *scrubbedError) Unwrap() error { return e.err }

func scrubError(err error, secret string) error {
	if err == nil || secret == "" || !strings.Contains(err.Error(), secret) {
		return err
	}
	return &scrubbedError{msg: Redact(err.Error(), secret), err: err}
}
