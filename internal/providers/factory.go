// ABOUTME: Factory for creating vulnerability sources and narrative generators.
// ABOUTME: Centralizes provider instantiation and configuration logic.

package providers

import (
	"os"

	"github.com/openhomesec/VulnTrack/internal/providers/local"
	"github.com/openhomesec/VulnTrack/internal/providers/mock"
	"github.com/openhomesec/VulnTrack/internal/providers/nvd"
	"github.com/openhomesec/VulnTrack/internal/providers/openai"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ProviderConfig holds configuration for creating providers.
type ProviderConfig struct {
	MockMode     bool   // Enable mock providers for local testing
	SourceFile   string // NVD-format JSON document for the file-based source
	NVDEndpoint  string // Override for the NVD API endpoint
	OpenAIAPIKey string // Credential for the generation service
}

// CreateVulnerabilitySource creates a vulnerability source based on
// configuration. A configured source file must exist.
func CreateVulnerabilitySource(config *ProviderConfig, logger *logrus.Logger) (VulnerabilitySource, error) {
	if config.MockMode {
		logger.Info("Using mock vulnerability source for testing")
		return mock.NewSource(logger), nil
	}

	if config.SourceFile != "" {
		if _, err := os.Stat(config.SourceFile); err != nil {
			return nil, errors.Wrapf(err, "source file %q is not readable", config.SourceFile)
		}
		logger.WithField("source_file", config.SourceFile).Info("Using file-based vulnerability source")
		return local.NewSource(config.SourceFile, logger), nil
	}

	return nvd.NewClient(config.NVDEndpoint, logger), nil
}

// CreateGenerator creates a narrative generator based on configuration.
func CreateGenerator(config *ProviderConfig, logger *logrus.Logger) Generator {
	if config.MockMode {
		logger.Info("Using mock narrative generator for testing")
		return mock.NewGenerator(logger)
	}

	// A missing key is not fatal: every generation call will fail and the
	// narratives degrade to placeholders, matching the per-call contract.
	if config.OpenAIAPIKey == "" {
		logger.Warn("No generation API key configured, narratives will degrade to placeholders")
	}

	return openai.NewClient(openai.Config{APIKey: config.OpenAIAPIKey}, logger)
}
