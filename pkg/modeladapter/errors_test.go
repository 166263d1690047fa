package modeladapter

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedact(t *testing.T) {
	assert.Equal(t, "key=[REDACTED]!", Redact("key=sk-1!", "sk-1"))
	assert.Equal(t, "nothing here", Redact("nothing here", ""))
}

func TestConfigurationError(t *testing.T) {
	err := &ConfigurationError{Field: "api_key", Reason: "is required"}
	assert.EqualError(t, err, "invalid configuration: api_key: is required")
}

func TestRemoteAPIError_Messages(t *testing.T) {
	assert.EqualError(t, &RemoteAPIError{StatusCode: 401, Body: `{"error":"invalid key"}`},
		`remote api: status 401: {"error":"invalid key"}`)

	transport := &RemoteAPIError{Err: errors.New("connection refused")}
	assert.EqualError(t, transport, "remote api: request failed: connection refused")
	assert.False(t, transport.Timeout())

	timeout := &RemoteAPIError{Err: fmt.Errorf("post: %w", context.DeadlineExceeded)}
	assert.True(t, timeout.Timeout())
	assert.Contains(t, timeout.Error(), "timed out")
}

func TestMalformedResponseError(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")
	err := &MalformedResponseError{Reason: "invalid JSON", Err: cause}

	assert.EqualError(t, err, "malformed response: invalid JSON: unexpected end of JSON input")
	assert.ErrorIs(t, err, cause)
	assert.EqualError(t, &MalformedResponseError{Reason: "empty choices"}, "malformed response: empty choices")
}

func TestScrubError(t *testing.T) {
	cause := fmt.Errorf("dial sk-abc: %w", context.Canceled)

	got := scrubError(cause, "sk-abc")
	assert.Equal(t, "dial [REDACTED]: context canceled", got.Error())
	assert.ErrorIs(t, got, context.Canceled)

	plain := errors.New("plain")
	assert.Same(t, plain, scrubError(plain, "sk-abc"))
	assert.Nil(t, scrubError(nil, "sk-abc"))
}
