package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/germanamz/openrouter/pkg/engine"
	"github.com/germanamz/openrouter/pkg/mcpserver"
)

func runServe(ctx context.Context, opts commonOptions, in io.Reader, out io.Writer) error {
	// stdout carries the protocol, so logs go to stderr.
	eng, err := loadEngine(opts, os.Stderr)
	if err != nil {
		return err
	}

	tools, err := engineTools(eng)
	if err != nil {
		return err
	}

	srv := mcpserver.New("openrouter", version)
	srv.Register(tools...)

	eng.Logger().Info("mcp server started", "profiles", eng.Names())

	return srv.Serve(ctx, in, out)
}

// engineTools returns one completion tool per engine profile.
func engineTools(eng *engine.Engine) ([]mcpserver.Tool, error) {
	names := eng.Names()
	tools := make([]mcpserver.Tool, 0, len(names))

	for _, name := range names {
		c, err := eng.Completer(name)
		if err != nil {
			return nil, err
		}

		a, err := eng.Adapter(name)
		if err != nil {
			return nil, err
		}

		tools = append(tools, mcpserver.Tool{
			Name:        mcpserver.ToolName(name),
			Description: fmt.Sprintf("Complete a prompt with %s via OpenRouter (profile %q).", a.Config().Model, name),
			Completer:   c,
		})
	}

	return tools, nil
}
