package mcpserver

import (
	"context"
	"errors"
	"testing"

	"github.com/germanamz/openrouter/pkg/modeladapter"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoCompleter() modeladapter.Completer {
	return modeladapter.CompleterFunc(func(_ context.Context, prompt string, stop []string) (string, error) {
		if len(stop) > 0 {
			return prompt + " (stop " + stop[0] + ")", nil
		}
		return "echo: " + prompt, nil
	})
}

func failingCompleter() modeladapter.Completer {
	return modeladapter.CompleterFunc(func(_ context.Context, _ string, _ []string) (string, error) {
		return "", &modeladapter.RemoteAPIError{StatusCode: 401, Body: `{"error":"invalid key"}`}
	})
}

// setupTestClient creates an MCPServer, connects an SDK client via in-memory
// transports, and returns the client session. The server runs in a background
// goroutine tied to t.Cleanup.
func setupTestClient(t *testing.T, tools ...Tool) *mcp.ClientSession {
	t.Helper()

	s := New("test-server", "1.0.0")
	s.Register(tools...)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- s.run(ctx, serverTransport)
	}()
	t.Cleanup(func() {
		cancel()
		<-serverDone
	})

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })

	return session
}

func textOf(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()

	require.Len(t, result.Content, 1)
	tc, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)

	return tc.Text
}

func TestToolName(t *testing.T) {
	assert.Equal(t, "complete_default", ToolName("default"))
}

func TestListTools(t *testing.T) {
	session := setupTestClient(t,
		Tool{Name: ToolName("default"), Description: "openai/gpt-3.5-turbo", Completer: echoCompleter()},
		Tool{Name: ToolName("creative"), Description: "mistral", Completer: echoCompleter()},
	)

	result, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, result.Tools, 2)

	byName := make(map[string]*mcp.Tool, len(result.Tools))
	for _, tool := range result.Tools {
		byName[tool.Name] = tool
	}

	def, ok := byName["complete_default"]
	require.True(t, ok)
	assert.Equal(t, "openai/gpt-3.5-turbo", def.Description)
	assert.Contains(t, byName, "complete_creative")
}

func TestCallTool_Success(t *testing.T) {
	session := setupTestClient(t, Tool{Name: "complete_default", Completer: echoCompleter()})

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "complete_default",
		Arguments: map[string]any{"prompt": "Say hi"},
	})
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, "echo: Say hi", textOf(t, result))
}

func TestCallTool_PassesStop(t *testing.T) {
	session := setupTestClient(t, Tool{Name: "complete_default", Completer: echoCompleter()})

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "complete_default",
		Arguments: map[string]any{"prompt": "p", "stop": []string{"END"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "p (stop END)", textOf(t, result))
}

func TestCallTool_MissingPrompt(t *testing.T) {
	session := setupTestClient(t, Tool{Name: "complete_default", Completer: echoCompleter()})

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "complete_default",
		Arguments: map[string]any{},
	})
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Equal(t, "prompt is required", textOf(t, result))
}

func TestCallTool_CompleterError(t *testing.T) {
	session := setupTestClient(t, Tool{Name: "complete_default", Completer: failingCompleter()})

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "complete_default",
		Arguments: map[string]any{"prompt": "p"},
	})
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, textOf(t, result), "status 401")
}

func TestCompletionHandler_InvalidArguments(t *testing.T) {
	h := completionHandler(echoCompleter())

	result, err := h(context.Background(), &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{Arguments: []byte(`{"prompt": 3}`)},
	})
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, textOf(t, result), "invalid arguments")
}

func TestContextCancellation(t *testing.T) {
	s := New("srv", "1.0.0")
	serverTransport, _ := mcp.NewInMemoryTransports()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.run(ctx, serverTransport)
	assert.True(t, errors.Is(err, context.Canceled))
}
