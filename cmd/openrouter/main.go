package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"
)

const version = "0.1.0"

func main() {
	args := os.Args[1:]

	// Handle subcommands before flag parsing.
	if len(args) > 0 {
		switch args[0] {
		case "params":
			paramsCmd := flag.NewFlagSet("params", flag.ExitOnError)
			paramsCmd.Usage = func() {
				fmt.Fprintf(os.Stderr, "Usage: openrouter params [flags]\n\nPrint the identifying parameters of a profile as YAML. The API key is redacted.\n\nFlags:\n")
				paramsCmd.PrintDefaults()
			}
			opts := registerCommonFlags(paramsCmd)
			_ = paramsCmd.Parse(args[1:])

			exitOnError(runParams(*opts, os.Stdout))

			return
		case "serve":
			serveCmd := flag.NewFlagSet("serve", flag.ExitOnError)
			serveCmd.Usage = func() {
				fmt.Fprintf(os.Stderr, "Usage: openrouter serve [flags]\n\nServe every profile as an MCP tool over stdio.\n\nFlags:\n")
				serveCmd.PrintDefaults()
			}
			opts := registerCommonFlags(serveCmd)
			_ = serveCmd.Parse(args[1:])

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			exitOnError(runServe(ctx, *opts, os.Stdin, os.Stdout))

			return
		case "init":
			initCmd := flag.NewFlagSet("init", flag.ExitOnError)
			initCmd.Usage = func() {
				fmt.Fprintf(os.Stderr, "Usage: openrouter init [flags]\n\nCreate a config file interactively.\n\nFlags:\n")
				initCmd.PrintDefaults()
			}
			output := initCmd.String("output", defaultConfigFile, "path of the config file to write")
			force := initCmd.Bool("force", false, "overwrite an existing config file")
			_ = initCmd.Parse(args[1:])

			exitOnError(runInit(*output, *force))

			return
		case "complete":
			args = args[1:]
		}
	}

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: openrouter [flags] [prompt...]\n       openrouter <command> [flags]\n\nWith no prompt arguments the prompt is read from stdin.\n\nFlags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nCommands:\n  complete  Complete a prompt (default)\n  params    Print the identifying parameters of a profile\n  serve     Serve profiles as MCP tools over stdio\n  init      Create a config file interactively\n")
	}

	opts := completeOptions{common: registerCommonFlags(flag.CommandLine)}
	flag.Var(&opts.stop, "stop", "stop sequence (repeatable; accepted but not sent to OpenRouter)")
	flag.BoolVar(&opts.render, "render", false, "render the completion as markdown")
	_ = flag.CommandLine.Parse(args)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	tio := terminalIO{
		stdin:       os.Stdin,
		stdout:      os.Stdout,
		stderr:      os.Stderr,
		interactive: term.IsTerminal(int(os.Stderr.Fd())), //nolint:gosec // fd fits in int
		width:       terminalWidth(os.Stdout),
	}

	exitOnError(runComplete(ctx, opts, flag.Args(), tio))
}

// exitOnError prints err and exits with status 1. A nil err is a no-op.
func exitOnError(err error) {
	if err == nil {
		return
	}

	fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
	os.Exit(1)
}

// terminalWidth returns the width of f when it is a terminal, or 0.
func terminalWidth(f *os.File) int {
	fd := int(f.Fd()) //nolint:gosec // fd fits in int
	if !term.IsTerminal(fd) {
		return 0
	}

	w, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}

	return w
}
