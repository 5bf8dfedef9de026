// ABOUTME: Provider interfaces for vulnerability sources and text generators.
// ABOUTME: Defines contracts so upstream services can be swapped for local or mock variants.

package providers

import (
	"context"

	"github.com/openhomesec/VulnTrack/internal/types"
)

// VulnerabilitySource abstracts the external vulnerability database queried
// per device keyword.
type VulnerabilitySource interface {
	Name() string
	Search(ctx context.Context, keyword string) ([]types.SourceItem, error)
}

// Generator abstracts the text-generation service used for narrative
// enrichment.
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}
