package engine

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/germanamz/openrouter/pkg/modeladapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStubServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Value) {
	t.Helper()

	var lastQuery atomic.Value
	lastQuery.Store("")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lastQuery.Store(r.URL.RawQuery)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv, &lastQuery
}

func testConfig(baseURL string) Config {
	return Config{
		Profiles: []ProfileConfig{
			{Name: "zeta", APIKey: "sk-or-zeta-secret", BaseURL: baseURL},
			{Name: "alpha", APIKey: "sk-or-alpha-secret", BaseURL: baseURL, LLMType: "alpha-type", Seed: ptr(1)},
		},
	}
}

func ptr[T any](v T) *T { return &v }

func TestNew_BuildsProfiles(t *testing.T) {
	srv, _ := newStubServer(t, http.StatusOK, `{"choices":[{"message":{"content":"hi"}}]}`)

	var logs bytes.Buffer
	eng, err := New(testConfig(srv.URL), WithLogOutput(&logs))
	require.NoError(t, err)

	assert.Equal(t, []string{"alpha", "zeta"}, eng.Names())
	assert.Equal(t, "zeta", eng.Default())

	a, err := eng.Adapter("alpha")
	require.NoError(t, err)
	assert.Equal(t, "alpha-type", a.LLMType())
	assert.Equal(t, 1, a.IdentifyingParams()["seed"])

	def, err := eng.Adapter("")
	require.NoError(t, err)
	assert.Equal(t, "gpt-3.5-turbo", def.LLMType())

	_, err = eng.Completer("missing")
	assert.EqualError(t, err, `engine: unknown profile "missing"`)
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestCompleter_RoundTrip(t *testing.T) {
	srv, query := newStubServer(t, http.StatusOK, `{"choices":[{"message":{"content":"Hello World!"}}]}`)

	cfg := testConfig(srv.URL)
	cfg.NullPolicy = "send"

	var logs bytes.Buffer
	eng, err := New(cfg, WithLogOutput(&logs))
	require.NoError(t, err)

	c, err := eng.Completer("alpha")
	require.NoError(t, err)

	text, err := c.Complete(context.Background(), "Say hi", nil)
	require.NoError(t, err)
	assert.Equal(t, "Hello World!", text)
	assert.Contains(t, query.Load(), "max_tokens=null")
	assert.Contains(t, query.Load(), "seed=1")

	assert.Contains(t, logs.String(), "completion finished")
	assert.Contains(t, logs.String(), "profile=alpha")
}

func TestCompleter_ErrorsAreLoggedWithoutKeys(t *testing.T) {
	srv, _ := newStubServer(t, http.StatusUnauthorized, `{"error":"bad key sk-or-zeta-secret"}`)

	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	eng, err := New(testConfig(srv.URL), WithLogger(base))
	require.NoError(t, err)

	c, err := eng.Completer("")
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), "Say hi", nil)

	var apiErr *modeladapter.RemoteAPIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)

	out := buf.String()
	assert.Contains(t, out, "completion failed")
	assert.NotContains(t, out, "sk-or-zeta-secret")
	assert.NotContains(t, out, "sk-or-alpha-secret")
}

func TestWithHTTPClient_Shared(t *testing.T) {
	srv, _ := newStubServer(t, http.StatusOK, `{"choices":[{"message":{"content":"ok"}}]}`)

	client := &http.Client{}
	eng, err := New(testConfig(srv.URL), WithHTTPClient(client), WithLogOutput(&bytes.Buffer{}))
	require.NoError(t, err)

	for _, name := range eng.Names() {
		a, err := eng.Adapter(name)
		require.NoError(t, err)
		assert.Same(t, client, a.Client)
	}
}
