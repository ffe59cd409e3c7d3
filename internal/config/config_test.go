package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	cfg.AnthropicAPIKey = "sk-test"
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadPort(t *testing.T) {
	cfg := Defaults()
	cfg.AnthropicAPIKey = "sk-test"
	cfg.APIPort = 70000

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APIPort")
}

func TestValidateRejectsDeadlineOrdering(t *testing.T) {
	cfg := Defaults()
	cfg.AnthropicAPIKey = "sk-test"
	cfg.CollectorDeadlineSeconds = cfg.InvestigationDeadlineSeconds + 1

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CollectorDeadlineSeconds")
}

func TestValidateRequiresAnthropicKeyForAnthropicProvider(t *testing.T) {
	cfg := Defaults()
	cfg.LLMProvider = "anthropic"
	cfg.AnthropicAPIKey = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AnthropicAPIKey")
}

func TestValidateAllowsMockProviderWithoutCredentials(t *testing.T) {
	cfg := Defaults()
	cfg.LLMProvider = "mock"
	require.NoError(t, cfg.Validate())
}

func TestLoadMergesEnvironmentOverrides(t *testing.T) {
	t.Setenv("RCA_API_PORT", "9091")
	t.Setenv("RCA_AWS_REGION", "eu-central-1")
	t.Setenv("RCA_LLM_PROVIDER", "mock")
	t.Setenv("RCA_LOG_LEVEL_EVIDENCE", "debug")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9091, cfg.APIPort)
	assert.Equal(t, "eu-central-1", cfg.AWSRegion)
	assert.Equal(t, "debug", cfg.PackageLogLevels["evidence"])
}
