package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/germanamz/openrouter/pkg/modeladapter/usage"
)

// completeOptions are the flags of the complete command.
type completeOptions struct {
	common *commonOptions
	stop   stopFlags
	render bool
}

// terminalIO is the terminal a command runs against.
type terminalIO struct {
	stdin       io.Reader
	stdout      io.Writer
	stderr      io.Writer
	interactive bool // stderr is a terminal: show the spinner and usage footer.
	width       int  // stdout width for markdown wrapping; 0 when unknown.
}

func runComplete(ctx context.Context, opts completeOptions, args []string, tio terminalIO) error {
	prompt, err := readPrompt(args, tio.stdin)
	if err != nil {
		return err
	}

	eng, err := loadEngine(*opts.common, tio.stderr)
	if err != nil {
		return err
	}

	completer, err := eng.Completer(opts.common.profile)
	if err != nil {
		return err
	}

	adapter, err := eng.Adapter(opts.common.profile)
	if err != nil {
		return err
	}

	complete := func() (string, error) {
		return completer.Complete(ctx, prompt, opts.stop)
	}

	start := time.Now()

	var text string
	if tio.interactive {
		text, err = runWithSpinner(ctx, tio.stderr, adapter.Config().Model, complete)
	} else {
		text, err = complete()
	}
	if err != nil {
		return err
	}

	if opts.render {
		text = renderMarkdown(text, tio.width)
	}

	fmt.Fprintln(tio.stdout, text)

	if tio.interactive {
		if tc, ok := adapter.UsageTracker().Last(); ok {
			fmt.Fprintln(tio.stderr, dimStyle.Render(usageFooter(tc, time.Since(start))))
		}
	}

	return nil
}

// usageFooter summarizes a completion's token usage for the terminal.
func usageFooter(tc usage.TokenCount, elapsed time.Duration) string {
	return fmt.Sprintf("%s · %s in · %s out · %s",
		tc.Model, fmtTokens(tc.PromptTokens), fmtTokens(tc.CompletionTokens), fmtDuration(elapsed))
}

// fmtTokens formats a token count for display, using k/M suffixes.
func fmtTokens(n int) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fk", float64(n)/1_000)
	default:
		return fmt.Sprintf("%d", n)
	}
}

// fmtDuration formats a duration for display.
func fmtDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	min := int(d.Minutes())
	sec := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %ds", min, sec)
}
