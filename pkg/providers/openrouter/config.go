package openrouter

import (
	"encoding/json"
	"maps"
	"math"
	"net/url"
	"strconv"

	"github.com/germanamz/openrouter/pkg/modeladapter"
)

// Defaults applied by DefaultConfig.
const (
	DefaultModel   = "openai/gpt-3.5-turbo"
	DefaultLLMType = "gpt-3.5-turbo"
)

// Ptr returns a pointer to v, for filling optional Config fields.
func Ptr[T any](v T) *T { return &v }

// Config holds generation settings for an Adapter. Nil pointer fields are
// unset; how unset knobs reach the wire is decided by the adapter's NullPolicy.
//
// N is recorded for identification only. The request never carries it and
// only the first choice of a response is read.
type Config struct {
	APIKey  string //nolint:gosec // configuration field, not a hardcoded secret
	Model   string
	LLMType string
	N       int

	MaxTokens         *int
	Temperature       *float64
	TopK              *int
	TopP              *float64
	PresencePenalty   *float64
	FrequencyPenalty  *float64
	RepetitionPenalty *float64
	MinP              *float64
	TopA              *float64
	Seed              *int
	LogitBias         map[string]float64
}

// DefaultConfig returns a Config with the documented defaults filled in.
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:            apiKey,
		Model:             DefaultModel,
		LLMType:           DefaultLLMType,
		N:                 1,
		TopP:              Ptr(1.0),
		PresencePenalty:   Ptr(0.0),
		FrequencyPenalty:  Ptr(0.0),
		RepetitionPenalty: Ptr(1.0),
		MinP:              Ptr(0.0),
		TopA:              Ptr(0.0),
	}
}

// Validate checks the fields a request cannot be built without.
func (c Config) Validate() error {
	switch {
	case c.APIKey == "":
		return &modeladapter.ConfigurationError{Field: "api_key", Reason: "is required"}
	case c.Model == "":
		return &modeladapter.ConfigurationError{Field: "model", Reason: "is required"}
	case c.N < 1:
		return &modeladapter.ConfigurationError{Field: "n", Reason: "must be at least 1"}
	case c.MaxTokens != nil && *c.MaxTokens <= 0:
		return &modeladapter.ConfigurationError{Field: "max_tokens", Reason: "must be positive"}
	case c.TopK != nil && *c.TopK < 0:
		return &modeladapter.ConfigurationError{Field: "top_k", Reason: "must not be negative"}
	}
	for token, bias := range c.LogitBias {
		if math.IsNaN(bias) || math.IsInf(bias, 0) {
			return &modeladapter.ConfigurationError{Field: "logit_bias", Reason: "bias for token " + strconv.Quote(token) + " is not finite"}
		}
	}
	return nil
}

// Clone returns a deep copy of c.
func (c Config) Clone() Config {
	out := c
	out.MaxTokens = clonePtr(c.MaxTokens)
	out.Temperature = clonePtr(c.Temperature)
	out.TopK = clonePtr(c.TopK)
	out.TopP = clonePtr(c.TopP)
	out.PresencePenalty = clonePtr(c.PresencePenalty)
	out.FrequencyPenalty = clonePtr(c.FrequencyPenalty)
	out.RepetitionPenalty = clonePtr(c.RepetitionPenalty)
	out.MinP = clonePtr(c.MinP)
	out.TopA = clonePtr(c.TopA)
	out.Seed = clonePtr(c.Seed)
	if c.LogitBias != nil {
		out.LogitBias = maps.Clone(c.LogitBias)
	}
	return out
}

// Params returns a snapshot of every field keyed by its snake_case name.
// Unset knobs map to nil. The snapshot includes api_key; do not log it.
func (c Config) Params() map[string]any {
	var bias any
	if c.LogitBias != nil {
		bias = maps.Clone(c.LogitBias)
	}

	return map[string]any{
		"api_key":            c.APIKey,
		"llm_type":           c.LLMType,
		"model":              c.Model,
		"n":                  c.N,
		"max_tokens":         deref(c.MaxTokens),
		"temperature":        deref(c.Temperature),
		"top_k":              deref(c.TopK),
		"top_p":              deref(c.TopP),
		"presence_penalty":   deref(c.PresencePenalty),
		"frequency_penalty":  deref(c.FrequencyPenalty),
		"repetition_penalty": deref(c.RepetitionPenalty),
		"min_p":              deref(c.MinP),
		"top_a":              deref(c.TopA),
		"seed":               deref(c.Seed),
		"logit_bias":         bias,
	}
}

// NullPolicy selects how unset knobs are written to the query string.
type NullPolicy int

const (
	// OmitNull leaves unset knobs out of the query string.
	OmitNull NullPolicy = iota
	// SendNull writes unset knobs as the literal value "null".
	SendNull
)

// String returns the policy's configuration name.
func (p NullPolicy) String() string {
	if p == SendNull {
		return "send"
	}
	return "omit"
}

// ParseNullPolicy maps "omit" (or "") and "send" to a NullPolicy.
func ParseNullPolicy(s string) (NullPolicy, error) {
	switch s {
	case "", "omit":
		return OmitNull, nil
	case "send":
		return SendNull, nil
	}
	return OmitNull, &modeladapter.ConfigurationError{Field: "null_policy", Reason: strconv.Quote(s) + " is not one of omit, send"}
}

const nullValue = "null"

// QueryValues returns the tuning knobs as query parameters. Floats use the
// shortest decimal form and logit_bias is a JSON object.
func (c Config) QueryValues(policy NullPolicy) url.Values {
	q := url.Values{}

	set := func(key string, value string, ok bool) {
		switch {
		case ok:
			q.Set(key, value)
		case policy == SendNull:
			q.Set(key, nullValue)
		}
	}

	setInt := func(key string, v *int) {
		if v == nil {
			set(key, "", false)
			return
		}
		set(key, strconv.Itoa(*v), true)
	}

	setFloat := func(key string, v *float64) {
		if v == nil {
			set(key, "", false)
			return
		}
		set(key, strconv.FormatFloat(*v, 'f', -1, 64), true)
	}

	setInt("max_tokens", c.MaxTokens)
	setFloat("temperature", c.Temperature)
	setInt("top_k", c.TopK)
	setFloat("top_p", c.TopP)
	setFloat("presence_penalty", c.PresencePenalty)
	setFloat("frequency_penalty", c.FrequencyPenalty)
	setFloat("repetition_penalty", c.RepetitionPenalty)
	setFloat("min_p", c.MinP)
	setFloat("top_a", c.TopA)
	setInt("seed", c.Seed)

	if len(c.LogitBias) == 0 {
		set("logit_bias", "", false)
	} else {
		// Validate rejects the non-finite values Marshal would fail on.
		b, _ := json.Marshal(c.LogitBias)
		set("logit_bias", string(b), true)
	}

	return q
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
