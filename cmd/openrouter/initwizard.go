package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/germanamz/openrouter/pkg/engine"
	"github.com/germanamz/openrouter/pkg/providers/openrouter"
	"gopkg.in/yaml.v3"
)

// wizardAnswers holds the raw form values. Empty numeric answers keep the
// adapter defaults.
type wizardAnswers struct {
	Profile     string
	APIKey      string //nolint:gosec // env var reference, not a secret
	Model       string
	LLMType     string
	Timeout     string
	NullPolicy  string
	MaxTokens   string
	Temperature string
}

func defaultWizardAnswers() wizardAnswers {
	return wizardAnswers{
		Profile:    defaultProfile,
		APIKey:     "${" + apiKeyEnv + "}",
		Model:      openrouter.DefaultModel,
		LLMType:    openrouter.DefaultLLMType,
		Timeout:    "30s",
		NullPolicy: openrouter.OmitNull.String(),
	}
}

func runInit(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use -force to overwrite)", path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	a, err := runWizard()
	if err != nil {
		return err
	}

	data, err := marshalWizardConfig(a)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}

	fmt.Printf("Wrote %s\n", path)

	return nil
}

func runWizard() (wizardAnswers, error) {
	a := defaultWizardAnswers()

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Profile name").Value(&a.Profile).Validate(validateRequired),
			huh.NewInput().Title("API key env var").Value(&a.APIKey).Validate(validateRequired),
			huh.NewInput().Title("Model").Value(&a.Model).Validate(validateRequired),
			huh.NewInput().Title("LLM type").Value(&a.LLMType).Validate(validateRequired),
		),
		huh.NewGroup(
			huh.NewInput().Title("Request timeout (e.g. 30s, 2m)").Value(&a.Timeout).Validate(validateDuration),
			huh.NewSelect[string]().
				Title("Unset parameters").
				Options(
					huh.NewOption("Omit from the request", openrouter.OmitNull.String()),
					huh.NewOption("Send as null", openrouter.SendNull.String()),
				).
				Value(&a.NullPolicy),
			huh.NewInput().Title("Max tokens (empty = unset)").Value(&a.MaxTokens).Validate(validateOptionalPositiveInt),
			huh.NewInput().Title("Temperature (empty = unset)").Value(&a.Temperature).Validate(validateOptionalFloat),
		),
	).Run()

	return a, err
}

func buildWizardConfig(a wizardAnswers) (engine.Config, error) {
	p := engine.ProfileConfig{
		Name:    a.Profile,
		APIKey:  a.APIKey,
		Model:   a.Model,
		LLMType: a.LLMType,
	}

	if a.MaxTokens != "" {
		n, err := strconv.Atoi(a.MaxTokens)
		if err != nil {
			return engine.Config{}, fmt.Errorf("max tokens: %w", err)
		}
		p.MaxTokens = &n
	}

	if a.Temperature != "" {
		t, err := strconv.ParseFloat(a.Temperature, 64)
		if err != nil {
			return engine.Config{}, fmt.Errorf("temperature: %w", err)
		}
		p.Temperature = &t
	}

	cfg := engine.Config{
		Timeout:  a.Timeout,
		Profiles: []engine.ProfileConfig{p},
	}
	if a.NullPolicy != openrouter.OmitNull.String() {
		cfg.NullPolicy = a.NullPolicy
	}

	return cfg, nil
}

func marshalWizardConfig(a wizardAnswers) ([]byte, error) {
	cfg, err := buildWizardConfig(a)
	if err != nil {
		return nil, err
	}

	return yaml.Marshal(cfg)
}

func validateRequired(s string) error {
	if s == "" {
		return errors.New("required")
	}

	return nil
}

func validateOptionalPositiveInt(s string) error {
	if s == "" {
		return nil
	}

	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return errors.New("must be a positive integer")
	}

	return nil
}

func validateOptionalFloat(s string) error {
	if s == "" {
		return nil
	}

	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return errors.New("must be a number")
	}

	return nil
}

func validateDuration(s string) error {
	if s == "" {
		return nil
	}

	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return errors.New("must be a positive duration (e.g. 30s, 2m)")
	}

	return nil
}
