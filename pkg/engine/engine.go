package engine

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sort"

	"github.com/germanamz/openrouter/pkg/logging"
	"github.com/germanamz/openrouter/pkg/modeladapter"
	"github.com/germanamz/openrouter/pkg/providers/openrouter"
)

// Engine holds one adapter per configured profile. It is read-only after New
// and safe for concurrent use.
type Engine struct {
	adapters   map[string]*openrouter.Adapter
	completers map[string]modeladapter.Completer
	names      []string
	def        string
	log        *slog.Logger
}

type options struct {
	log       *slog.Logger
	logOutput io.Writer
	client    *http.Client
}

// Option customizes New.
type Option func(*options)

// WithLogger routes logs through l. Records still pass through a redacting
// handler that knows the configured API keys.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithLogOutput sets where the config-built logger writes (default os.Stderr).
func WithLogOutput(w io.Writer) Option {
	return func(o *options) { o.logOutput = w }
}

// WithHTTPClient shares one HTTP client across all profiles.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.client = c }
}

// New validates cfg and builds an adapter for every profile. Each adapter is
// exposed through Completer wrapped with recovery, logging and timeout
// middleware.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{logOutput: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}

	secrets := make([]string, 0, len(cfg.Profiles))
	for _, p := range cfg.Profiles {
		secrets = append(secrets, p.APIKey)
	}

	log := o.log
	if log == nil {
		level := slog.LevelInfo
		if cfg.Log.Level != "" {
			level, _ = logging.ParseLevel(cfg.Log.Level) // Checked by Validate.
		}
		log = logging.New(o.logOutput, level, cfg.Log.Format, secrets...)
	} else {
		log = slog.New(logging.NewRedactingHandler(log.Handler(), secrets...))
	}

	policy, _ := openrouter.ParseNullPolicy(cfg.NullPolicy) // Checked by Validate.
	globalTimeout, _ := parseTimeout(cfg.Timeout)

	e := &Engine{
		adapters:   make(map[string]*openrouter.Adapter, len(cfg.Profiles)),
		completers: make(map[string]modeladapter.Completer, len(cfg.Profiles)),
		def:        cfg.Default,
		log:        log,
	}
	if e.def == "" {
		e.def = cfg.Profiles[0].Name
	}

	for _, p := range cfg.Profiles {
		timeout, _ := parseTimeout(p.Timeout)
		if timeout == 0 {
			timeout = globalTimeout
		}
		if timeout == 0 {
			timeout = modeladapter.DefaultTimeout
		}

		plog := log.With("profile", p.Name)

		adapterOpts := []openrouter.Option{
			openrouter.WithNullPolicy(policy),
			openrouter.WithTimeout(timeout),
			openrouter.WithLogger(plog),
		}
		if p.BaseURL != "" {
			adapterOpts = append(adapterOpts, openrouter.WithBaseURL(p.BaseURL))
		}
		if len(p.Headers) > 0 {
			adapterOpts = append(adapterOpts, openrouter.WithHeaders(p.Headers))
		}
		if o.client != nil {
			adapterOpts = append(adapterOpts, openrouter.WithHTTPClient(o.client))
		}

		a, err := openrouter.New(p.Generation(), adapterOpts...)
		if err != nil {
			return nil, fmt.Errorf("engine: profile %q: %w", p.Name, err)
		}

		e.adapters[p.Name] = a
		e.completers[p.Name] = modeladapter.Chain(
			modeladapter.Recovery(),
			modeladapter.Logger(log, p.Name),
			modeladapter.Timeout(timeout),
		)(a)
		e.names = append(e.names, p.Name)
	}

	sort.Strings(e.names)

	return e, nil
}

// Logger returns the engine's redacting logger.
func (e *Engine) Logger() *slog.Logger { return e.log }

// Default returns the name of the default profile.
func (e *Engine) Default() string { return e.def }

// Names returns the profile names in sorted order.
func (e *Engine) Names() []string {
	return append([]string(nil), e.names...)
}

// Completer returns the middleware-wrapped completer for the named profile.
// An empty name selects the default profile.
func (e *Engine) Completer(name string) (modeladapter.Completer, error) {
	if name == "" {
		name = e.def
	}

	c, ok := e.completers[name]
	if !ok {
		return nil, fmt.Errorf("engine: unknown profile %q", name)
	}

	return c, nil
}

// Adapter returns the bare adapter for the named profile, for identification
// and usage reporting. An empty name selects the default profile.
func (e *Engine) Adapter(name string) (*openrouter.Adapter, error) {
	if name == "" {
		name = e.def
	}

	a, ok := e.adapters[name]
	if !ok {
		return nil, fmt.Errorf("engine: unknown profile %q", name)
	}

	return a, nil
}
