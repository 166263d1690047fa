package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/germanamz/openrouter/pkg/engine"
	"github.com/joho/godotenv"
)

const (
	defaultConfigFile = "openrouter.yaml"
	apiKeyEnv         = "OPENROUTER_API_KEY" //nolint:gosec // env var name, not a secret
	defaultProfile    = "default"
)

// commonOptions are the flags shared by complete, params and serve.
type commonOptions struct {
	configPath string
	envFile    string
	profile    string
	logLevel   string
}

func registerCommonFlags(set *flag.FlagSet) *commonOptions {
	o := &commonOptions{}
	set.StringVar(&o.configPath, "config", "", "path to configuration file (default: "+defaultConfigFile+", or "+apiKeyEnv+" alone)")
	set.StringVar(&o.envFile, "env", ".env", "path to .env file (ignored if missing)")
	set.StringVar(&o.profile, "profile", "", "profile to use (default: the config's default profile)")
	set.StringVar(&o.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")

	return o
}

// stopFlags collects repeated -stop flags.
type stopFlags []string

func (s *stopFlags) String() string { return strings.Join(*s, ",") }

func (s *stopFlags) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// loadDotEnv loads environment variables from path. Missing files are ignored.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// resolveConfig returns the configuration to use. Priority:
// 1. Explicit --config flag (non-empty)
// 2. openrouter.yaml (if it exists)
// 3. A single default profile keyed by OPENROUTER_API_KEY
func resolveConfig(explicit string) (engine.Config, error) {
	if explicit != "" {
		return engine.LoadConfig(explicit)
	}

	if _, err := os.Stat(defaultConfigFile); err == nil {
		return engine.LoadConfig(defaultConfigFile)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return engine.Config{}, err
	}

	key := os.Getenv(apiKeyEnv)
	if key == "" {
		return engine.Config{}, fmt.Errorf("no %s found and %s is not set (run \"openrouter init\")", defaultConfigFile, apiKeyEnv)
	}

	return engine.Config{
		Profiles: []engine.ProfileConfig{{Name: defaultProfile, APIKey: key}},
	}, nil
}

// loadEngine loads the environment and configuration described by o and
// builds an engine whose logs go to logOut.
func loadEngine(o commonOptions, logOut io.Writer) (*engine.Engine, error) {
	if err := loadDotEnv(o.envFile); err != nil {
		return nil, err
	}

	cfg, err := resolveConfig(o.configPath)
	if err != nil {
		return nil, err
	}

	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}

	return engine.New(cfg, engine.WithLogOutput(logOut))
}

// readPrompt joins args into a prompt, or reads it from r when args is empty.
func readPrompt(args []string, r io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read prompt: %w", err)
	}

	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return "", errors.New("prompt is required (pass it as arguments or on stdin)")
	}

	return prompt, nil
}

// renderMarkdown converts markdown text to terminal-formatted output. It
// returns text unchanged when the renderer cannot be built.
func renderMarkdown(text string, width int) string {
	if width <= 0 {
		width = 100
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return text
	}

	out, err := r.Render(text)
	if err != nil {
		return text
	}

	return strings.TrimRight(out, "\n")
}
