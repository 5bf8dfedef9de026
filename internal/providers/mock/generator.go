// ABOUTME: Mock narrative generator for local testing and development.
// ABOUTME: Produces deterministic text without calling the generation service.

package mock

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
)

// Generator implements the generator interface with deterministic output.
type Generator struct {
	logger *logrus.Logger
}

// NewGenerator creates a new mock generator.
func NewGenerator(logger *logrus.Logger) *Generator {
	return &Generator{
		logger: logger,
	}
}

// Name returns the name of this generator.
func (m *Generator) Name() string {
	return "mock-generator"
}

// Generate returns a deterministic summary derived from the prompt.
func (m *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	m.logger.WithField("prompt_length", len(prompt)).Debug("Generating mock narrative")

	switch {
	case strings.Contains(prompt, "provide the threat"):
		return "An attacker nearby could misuse this flaw to interfere with the device.", nil
	case strings.Contains(prompt, "provide recommendation"):
		return "Update the device firmware and keep it on a separate network.", nil
	case strings.Contains(prompt, "potential impact"):
		return "The device could be controlled or observed by someone who should not have access.", nil
	case strings.Contains(prompt, "affected systems"):
		return "Devices running the vulnerable firmware version described in the advisory.", nil
	default:
		return "No summary available for this prompt.", nil
	}
}
