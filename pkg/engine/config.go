package engine

import (
	"fmt"
	"os"
	"time"

	"github.com/germanamz/openrouter/pkg/logging"
	"github.com/germanamz/openrouter/pkg/providers/openrouter"
	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration.
type Config struct {
	Default    string          `yaml:"default,omitempty"`     // Profile used when none is named; defaults to the first.
	Timeout    string          `yaml:"timeout,omitempty"`     // Per-request timeout as a duration string (default "30s").
	NullPolicy string          `yaml:"null_policy,omitempty"` // "omit" (default) or "send".
	Log        LogConfig       `yaml:"log,omitempty"`
	Profiles   []ProfileConfig `yaml:"profiles"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`  // debug, info, warn, error (default info).
	Format string `yaml:"format,omitempty"` // text (default) or json.
}

// ProfileConfig describes one configured OpenRouter variant. Unset knobs take
// the defaults of openrouter.DefaultConfig.
type ProfileConfig struct {
	Name    string            `yaml:"name"`
	LLMType string            `yaml:"llm_type,omitempty"`
	Model   string            `yaml:"model,omitempty"`
	APIKey  string            `yaml:"api_key"` //nolint:gosec // configuration field, not a hardcoded secret
	BaseURL string            `yaml:"base_url,omitempty"`
	Timeout string            `yaml:"timeout,omitempty"` // Overrides Config.Timeout.
	Headers map[string]string `yaml:"headers,omitempty"`

	N                 *int               `yaml:"n,omitempty"`
	MaxTokens         *int               `yaml:"max_tokens,omitempty"`
	Temperature       *float64           `yaml:"temperature,omitempty"`
	TopK              *int               `yaml:"top_k,omitempty"`
	TopP              *float64           `yaml:"top_p,omitempty"`
	PresencePenalty   *float64           `yaml:"presence_penalty,omitempty"`
	FrequencyPenalty  *float64           `yaml:"frequency_penalty,omitempty"`
	RepetitionPenalty *float64           `yaml:"repetition_penalty,omitempty"`
	MinP              *float64           `yaml:"min_p,omitempty"`
	TopA              *float64           `yaml:"top_a,omitempty"`
	Seed              *int               `yaml:"seed,omitempty"`
	LogitBias         map[string]float64 `yaml:"logit_bias,omitempty"`
}

// Generation returns the openrouter.Config this profile describes.
func (p ProfileConfig) Generation() openrouter.Config {
	cfg := openrouter.DefaultConfig(p.APIKey)

	if p.Model != "" {
		cfg.Model = p.Model
	}
	if p.LLMType != "" {
		cfg.LLMType = p.LLMType
	}
	if p.N != nil {
		cfg.N = *p.N
	}

	overlay(&cfg.MaxTokens, p.MaxTokens)
	overlay(&cfg.Temperature, p.Temperature)
	overlay(&cfg.TopK, p.TopK)
	overlay(&cfg.TopP, p.TopP)
	overlay(&cfg.PresencePenalty, p.PresencePenalty)
	overlay(&cfg.FrequencyPenalty, p.FrequencyPenalty)
	overlay(&cfg.RepetitionPenalty, p.RepetitionPenalty)
	overlay(&cfg.MinP, p.MinP)
	overlay(&cfg.TopA, p.TopA)
	overlay(&cfg.Seed, p.Seed)

	if p.LogitBias != nil {
		cfg.LogitBias = p.LogitBias
	}

	return cfg.Clone()
}

func overlay[T any](dst **T, src *T) {
	if src != nil {
		*dst = src
	}
}

// LoadConfig reads a YAML file and returns a Config.
// Environment variables referenced as ${VAR} or $VAR in the YAML are expanded
// before parsing, so API keys can stay in the environment (e.g. loaded from a
// .env file) rather than in the config.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-provided configuration, not user input
	if err != nil {
		return Config{}, fmt.Errorf("engine: load config: %w", err)
	}

	return ParseConfig(data)
}

// ParseConfig expands environment variables in data and parses it as YAML.
func ParseConfig(data []byte) (Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, fmt.Errorf("engine: parse config: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration is internally consistent. Error
// messages name fields, never their values.
func (c Config) Validate() error {
	if len(c.Profiles) == 0 {
		return fmt.Errorf("engine: config: at least one profile is required")
	}

	if _, err := parseTimeout(c.Timeout); err != nil {
		return fmt.Errorf("engine: config: timeout: %w", err)
	}
	if _, err := openrouter.ParseNullPolicy(c.NullPolicy); err != nil {
		return fmt.Errorf("engine: config: %w", err)
	}
	if c.Log.Level != "" {
		if _, err := logging.ParseLevel(c.Log.Level); err != nil {
			return fmt.Errorf("engine: config: log level: %w", err)
		}
	}
	if f := c.Log.Format; f != "" && f != "text" && f != "json" {
		return fmt.Errorf("engine: config: log format %q is not one of text, json", f)
	}

	names := make(map[string]struct{}, len(c.Profiles))
	for _, p := range c.Profiles {
		if p.Name == "" {
			return fmt.Errorf("engine: config: profile name is required")
		}
		if _, dup := names[p.Name]; dup {
			return fmt.Errorf("engine: config: duplicate profile name %q", p.Name)
		}
		names[p.Name] = struct{}{}

		if _, err := parseTimeout(p.Timeout); err != nil {
			return fmt.Errorf("engine: config: profile %q: timeout: %w", p.Name, err)
		}
		if err := p.Generation().Validate(); err != nil {
			return fmt.Errorf("engine: config: profile %q: %w", p.Name, err)
		}
	}

	if c.Default != "" {
		if _, ok := names[c.Default]; !ok {
			return fmt.Errorf("engine: config: default profile %q not found in profiles", c.Default)
		}
	}

	return nil
}

// parseTimeout parses a duration string. Empty means zero (use the default).
func parseTimeout(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", s)
	}

	return d, nil
}
