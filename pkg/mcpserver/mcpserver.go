// Package mcpserver exposes completers as MCP tools, so an MCP-speaking host
// can call OpenRouter through the same adapter the CLI uses.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/germanamz/openrouter/pkg/modeladapter"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// inputSchema is shared by every completion tool.
var inputSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "prompt": {"type": "string", "description": "Prompt sent as a single user message."},
    "stop": {"type": "array", "items": {"type": "string"}, "description": "Stop sequences. Accepted but not sent to OpenRouter."}
  },
  "required": ["prompt"]
}`)

// Tool binds a completer to an MCP tool name.
type Tool struct {
	Name        string
	Description string
	Completer   modeladapter.Completer
}

// ToolName returns the tool name used for a profile.
func ToolName(profile string) string {
	return "complete_" + profile
}

// MCPServer serves completion tools over the MCP protocol using the official MCP Go SDK.
type MCPServer struct {
	server *mcp.Server
}

// New creates a new MCPServer with the given name and version.
func New(name, version string) *MCPServer {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    name,
		Version: version,
	}, nil)

	return &MCPServer{server: server}
}

// Register adds tools to the server.
func (s *MCPServer) Register(tools ...Tool) {
	for _, t := range tools {
		s.server.AddTool(&mcp.Tool{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: inputSchema,
		}, completionHandler(t.Completer))
	}
}

// Serve starts serving MCP requests. It reads requests from in and writes
// responses to out. It blocks until ctx is cancelled or the transport closes.
func (s *MCPServer) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	transport := &mcp.IOTransport{
		Reader: io.NopCloser(in),
		Writer: nopWriteCloser{out},
	}

	return s.run(ctx, transport)
}

// run starts the server with the given transport.
func (s *MCPServer) run(ctx context.Context, transport mcp.Transport) error {
	return s.server.Run(ctx, transport)
}

type completionArgs struct {
	Prompt string   `json:"prompt"`
	Stop   []string `json:"stop"`
}

// completionHandler reports failures as tool errors so the host sees the
// message; protocol errors are reserved for transport problems.
func completionHandler(c modeladapter.Completer) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args completionArgs
		if raw := req.Params.Arguments; len(raw) > 0 {
			if err := json.Unmarshal(raw, &args); err != nil {
				return errorResult(fmt.Errorf("invalid arguments: %w", err)), nil
			}
		}
		if args.Prompt == "" {
			return errorResult(errors.New("prompt is required")), nil
		}

		text, err := c.Complete(ctx, args.Prompt, args.Stop)
		if err != nil {
			return errorResult(err), nil
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: text}},
		}, nil
	}
}

func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
		IsError: true,
	}
}

// nopWriteCloser wraps an io.Writer as an io.WriteCloser with a no-op Close.
type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
