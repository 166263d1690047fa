package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/germanamz/openrouter/pkg/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalWizardConfig_Defaults(t *testing.T) {
	data, err := marshalWizardConfig(defaultWizardAnswers())
	require.NoError(t, err)

	s := string(data)
	assert.Contains(t, s, "${OPENROUTER_API_KEY}")
	assert.Contains(t, s, "model: openai/gpt-3.5-turbo")
	assert.Contains(t, s, "timeout: 30s")
	assert.NotContains(t, s, "null_policy")
	assert.NotContains(t, s, "max_tokens")

	t.Setenv("OPENROUTER_API_KEY", "sk-or-wizard")
	cfg, err := engine.ParseConfig(data)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "sk-or-wizard", cfg.Profiles[0].APIKey)
}

func TestMarshalWizardConfig_Knobs(t *testing.T) {
	a := defaultWizardAnswers()
	a.Profile = "creative"
	a.NullPolicy = "send"
	a.MaxTokens = "256"
	a.Temperature = "0.7"

	cfg, err := buildWizardConfig(a)
	require.NoError(t, err)

	assert.Equal(t, "send", cfg.NullPolicy)
	p := cfg.Profiles[0]
	assert.Equal(t, "creative", p.Name)
	require.NotNil(t, p.MaxTokens)
	assert.Equal(t, 256, *p.MaxTokens)
	require.NotNil(t, p.Temperature)
	assert.InDelta(t, 0.7, *p.Temperature, 1e-9)
}

func TestBuildWizardConfig_InvalidNumbers(t *testing.T) {
	a := defaultWizardAnswers()
	a.MaxTokens = "lots"
	_, err := buildWizardConfig(a)
	assert.ErrorContains(t, err, "max tokens")

	a = defaultWizardAnswers()
	a.Temperature = "warm"
	_, err = buildWizardConfig(a)
	assert.ErrorContains(t, err, "temperature")
}

func TestRunInit_RefusesToOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "openrouter.yaml")
	require.NoError(t, os.WriteFile(path, []byte("existing"), 0o600))

	err := runInit(path, false)
	assert.ErrorContains(t, err, "already exists")

	data, err := os.ReadFile(path) //nolint:gosec // test path
	require.NoError(t, err)
	assert.Equal(t, "existing", string(data))
}

func TestWizardValidators(t *testing.T) {
	assert.Error(t, validateRequired(""))
	assert.NoError(t, validateRequired("x"))

	assert.NoError(t, validateOptionalPositiveInt(""))
	assert.NoError(t, validateOptionalPositiveInt("5"))
	assert.Error(t, validateOptionalPositiveInt("0"))

	assert.NoError(t, validateOptionalFloat("0.5"))
	assert.Error(t, validateOptionalFloat("hot"))

	assert.NoError(t, validateDuration("45s"))
	assert.Error(t, validateDuration("-1s"))
	assert.Error(t, validateDuration("soon"))
}
