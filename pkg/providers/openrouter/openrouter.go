// Package openrouter provides a Completer implementation for the OpenRouter
// chat completions API. One prompt goes out as a single user message and the
// first choice's content comes back.
package openrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/germanamz/openrouter/pkg/modeladapter"
	"github.com/germanamz/openrouter/pkg/modeladapter/usage"
)

// DefaultBaseURL is the OpenRouter API root. Requests go to
// DefaultBaseURL + "/chat/completions".
const DefaultBaseURL = "https://openrouter.ai/api/v1"

const completionsPath = "/chat/completions"

var (
	_ modeladapter.Completer  = (*Adapter)(nil)
	_ modeladapter.Identifier = (*Adapter)(nil)
)

// Adapter implements modeladapter.Completer for OpenRouter. Its Config is
// fixed at construction, so one Adapter may serve concurrent calls as long as
// its HTTP client does.
type Adapter struct {
	modeladapter.ModelAdapter

	cfg    Config
	policy NullPolicy
	log    *slog.Logger
}

// Option customizes an Adapter.
type Option func(*Adapter)

// WithBaseURL overrides DefaultBaseURL (no trailing slash).
func WithBaseURL(baseURL string) Option {
	return func(a *Adapter) { a.BaseURL = baseURL }
}

// WithHTTPClient sets the HTTP client. The client's own timeout then applies
// instead of WithTimeout.
func WithHTTPClient(c *http.Client) Option {
	return func(a *Adapter) { a.Client = c }
}

// WithTimeout bounds each request made with the default client.
func WithTimeout(d time.Duration) Option {
	return func(a *Adapter) { a.Timeout = d }
}

// WithNullPolicy selects how unset knobs are sent. The default is OmitNull.
func WithNullPolicy(p NullPolicy) Option {
	return func(a *Adapter) { a.policy = p }
}

// WithHeaders adds headers to every request, e.g. OpenRouter's HTTP-Referer
// and X-Title attribution headers.
func WithHeaders(h map[string]string) Option {
	return func(a *Adapter) {
		if a.Headers == nil {
			a.Headers = make(map[string]string, len(h))
		}
		for k, v := range h {
			a.Headers[k] = v
		}
	}
}

// WithLogger sets the logger for per-request debug lines.
func WithLogger(l *slog.Logger) Option {
	return func(a *Adapter) { a.log = l }
}

// New validates cfg and creates an Adapter holding a private copy of it.
func New(cfg Config, opts ...Option) (*Adapter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("openrouter: %w", err)
	}

	a := &Adapter{
		cfg: cfg.Clone(),
		log: slog.New(slog.DiscardHandler),
	}
	a.BaseURL = DefaultBaseURL
	a.Auth = modeladapter.Auth{Key: cfg.APIKey}

	for _, opt := range opts {
		opt(a)
	}

	return a, nil
}

// Config returns a copy of the adapter's configuration.
func (a *Adapter) Config() Config { return a.cfg.Clone() }

// LLMType returns the configured logical type label.
func (a *Adapter) LLMType() string { return a.cfg.LLMType }

// IdentifyingParams returns a snapshot of the configuration, api_key included.
func (a *Adapter) IdentifyingParams() map[string]any { return a.cfg.Params() }

// Generate is Complete without stop sequences.
func (a *Adapter) Generate(ctx context.Context, prompt string) (string, error) {
	return a.Complete(ctx, prompt, nil)
}

// Complete sends prompt as a single user message and returns the content of
// the first choice. Stop sequences are accepted but not transmitted.
func (a *Adapter) Complete(ctx context.Context, prompt string, stop []string) (string, error) {
	if len(stop) > 0 {
		a.log.DebugContext(ctx, "stop sequences are not sent to openrouter", "count", len(stop))
	}

	req := a.buildRequest(prompt)
	query := a.cfg.QueryValues(a.policy)

	start := time.Now()
	resp, err := a.PostJSON(ctx, completionsPath, query, req)
	if err != nil {
		a.log.DebugContext(ctx, "openrouter request failed",
			"model", a.cfg.Model,
			"duration", time.Since(start),
			"error", err,
		)
		return "", fmt.Errorf("openrouter: %w", err)
	}

	a.log.DebugContext(ctx, "openrouter request finished",
		"model", a.cfg.Model,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	text, err := a.parseResponse(resp.Body)
	if err != nil {
		return "", fmt.Errorf("openrouter: %w", err)
	}

	return text, nil
}

// --- request types ---

type apiRequest struct {
	Model    string       `json:"model"`
	Messages []apiMessage `json:"messages"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// --- response types ---

type apiResponse struct {
	ID      string      `json:"id"`
	Model   string      `json:"model"`
	Choices []apiChoice `json:"choices"`
	Usage   *apiUsage   `json:"usage"`
	Error   *apiError   `json:"error"`
}

type apiChoice struct {
	Message      *apiRespMessage `json:"message"`
	FinishReason string          `json:"finish_reason"`
}

type apiRespMessage struct {
	Role    string  `json:"role"`
	Content *string `json:"content"`
}

type apiUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

type apiError struct {
	Code    any    `json:"code"`
	Message string `json:"message"`
}

// --- conversion helpers ---

func (a *Adapter) buildRequest(prompt string) apiRequest {
	return apiRequest{
		Model:    a.cfg.Model,
		Messages: []apiMessage{{Role: "user", Content: prompt}},
	}
}

func (a *Adapter) parseResponse(body []byte) (string, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &modeladapter.MalformedResponseError{
			Reason: "invalid JSON",
			Body:   a.redact(body),
			Err:    err,
		}
	}

	if resp.Usage != nil {
		a.Usage.Add(usage.TokenCount{
			Model:            resp.Model,
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
		})
	}

	if len(resp.Choices) == 0 {
		reason := "empty choices"
		if resp.Error != nil && resp.Error.Message != "" {
			reason += ": " + modeladapter.Redact(resp.Error.Message, a.cfg.APIKey)
		}
		return "", &modeladapter.MalformedResponseError{Reason: reason, Body: a.redact(body)}
	}

	msg := resp.Choices[0].Message
	if msg == nil || msg.Content == nil {
		return "", &modeladapter.MalformedResponseError{
			Reason: "missing choices[0].message.content",
			Body:   a.redact(body),
		}
	}

	return *msg.Content, nil
}

func (a *Adapter) redact(body []byte) string {
	return modeladapter.Redact(string(body), a.cfg.APIKey)
}
