package main

import (
	"io"
	"maps"

	"github.com/germanamz/openrouter/pkg/logging"
	"gopkg.in/yaml.v3"
)

// paramsYAML is the output of the params command.
type paramsYAML struct {
	Profile string         `yaml:"profile"`
	LLMType string         `yaml:"llm_type"`
	Params  map[string]any `yaml:"params"`
}

func runParams(opts commonOptions, out io.Writer) error {
	eng, err := loadEngine(opts, io.Discard)
	if err != nil {
		return err
	}

	profile := opts.profile
	if profile == "" {
		profile = eng.Default()
	}

	adapter, err := eng.Adapter(profile)
	if err != nil {
		return err
	}

	data, err := marshalParams(profile, adapter.LLMType(), adapter.IdentifyingParams())
	if err != nil {
		return err
	}

	_, err = out.Write(data)
	return err
}

func marshalParams(profile, llmType string, params map[string]any) ([]byte, error) {
	return yaml.Marshal(paramsYAML{
		Profile: profile,
		LLMType: llmType,
		Params:  redactParams(params),
	})
}

// redactParams returns a copy of params with the API key masked.
func redactParams(params map[string]any) map[string]any {
	out := maps.Clone(params)
	if key, ok := out["api_key"].(string); ok && key != "" {
		out["api_key"] = logging.Placeholder
	}

	return out
}
