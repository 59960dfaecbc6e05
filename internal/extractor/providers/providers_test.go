package providers_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deedcheck/internal/config"
	"deedcheck/internal/extractor"
	"deedcheck/internal/extractor/claude"
	"deedcheck/internal/extractor/providers"
)

func TestRegisterBuiltins(t *testing.T) {
	providers.RegisterBuiltins()
	providers.RegisterBuiltins()

	names := extractor.Providers()
	assert.Subset(t, names, []string{"claude", "gemini", "openai"})
}

func TestBuild_SingleProvider(t *testing.T) {
	cfg := &config.ExtractorConfig{Provider: "claude", APIKey: "k"}

	e, err := providers.Build(cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &claude.Extractor{}, e)
}

func TestBuild_FallbackChain(t *testing.T) {
	cfg := &config.ExtractorConfig{
		Primary:   config.ExtractorProviderConfig{Provider: "claude", APIKey: "k1"},
		Secondary: config.ExtractorProviderConfig{Provider: "openai", APIKey: "k2"},
		Tertiary:  config.ExtractorProviderConfig{Provider: "gemini", APIKey: "k3"},
	}

	e, err := providers.Build(cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &extractor.FallbackExtractor{}, e)
}

func TestBuild_MissingAPIKey(t *testing.T) {
	cfg := &config.ExtractorConfig{
		Primary:   config.ExtractorProviderConfig{Provider: "claude", APIKey: "k1"},
		Secondary: config.ExtractorProviderConfig{Provider: "openai"},
	}

	_, err := providers.Build(cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "openai")
}

func TestBuild_UnknownProvider(t *testing.T) {
	_, err := providers.Build(&config.ExtractorConfig{Provider: "llama", APIKey: "k"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown extractor provider")
}
