// Package providers registers the built-in LLM extractors and assembles the
// configured fallback chain.
package providers

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"deedcheck/internal/config"
	"deedcheck/internal/extractor"
	"deedcheck/internal/extractor/claude"
	"deedcheck/internal/extractor/gemini"
	"deedcheck/internal/extractor/openai"
	"deedcheck/internal/port"
)

var registerOnce sync.Once

// RegisterBuiltins registers the openai, claude and gemini factories.
func RegisterBuiltins() {
	registerOnce.Do(func() {
		extractor.RegisterProvider("openai", func(cfg *config.ExtractorProviderConfig) (port.DeedExtractor, error) {
			return openai.NewExtractor(cfg), nil
		})
		extractor.RegisterProvider("claude", func(cfg *config.ExtractorProviderConfig) (port.DeedExtractor, error) {
			return claude.NewExtractor(cfg), nil
		})
		extractor.RegisterProvider("gemini", func(cfg *config.ExtractorProviderConfig) (port.DeedExtractor, error) {
			return gemini.NewExtractor(cfg), nil
		})
	})
}

// Build creates the configured extractor. A single configured provider is
// returned as-is; more than one is wrapped in a FallbackExtractor.
func Build(cfg *config.ExtractorConfig, log *zap.Logger) (port.DeedExtractor, error) {
	RegisterBuiltins()

	chain := cfg.Chain()
	extractors := make([]port.DeedExtractor, 0, len(chain))
	names := make([]string, 0, len(chain))
	for _, pc := range chain {
		if pc.APIKey == "" {
			return nil, fmt.Errorf("extractor provider %s: api key is not configured", pc.Provider)
		}
		e, err := extractor.NewExtractor(pc)
		if err != nil {
			return nil, err
		}
		extractors = append(extractors, e)
		names = append(names, pc.Provider)
	}

	if len(extractors) == 1 {
		return extractors[0], nil
	}
	return extractor.NewFallbackExtractor(extractors, names, log), nil
}
