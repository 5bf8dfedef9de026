// ABOUTME: Narrative enricher producing plain-language summaries for vulnerabilities.
// ABOUTME: Issues four sequential generation calls and degrades failures to placeholders.

package enrich

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// Generator produces a short completion for a single prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Narratives holds the four plain-language summaries attached to a new
// vulnerability record.
type Narratives struct {
	Threats         string
	Impact          string
	Recommendations string
	AffectedSystems string
}

// Prompts instruct the generator to skip the usual filler lead-ins.
const promptPreamble = "In layman's terms without using the 'in simple terms' words, "

// Enricher turns a vulnerability description into narratives via a Generator.
type Enricher struct {
	generator Generator
	logger    *logrus.Logger
	failures  prometheus.Counter // may be nil
}

// New creates an Enricher. failures counts degraded generation calls and may
// be nil.
func New(generator Generator, logger *logrus.Logger, failures prometheus.Counter) *Enricher {
	return &Enricher{
		generator: generator,
		logger:    logger,
		failures:  failures,
	}
}

// Narratives generates the four summaries sequentially, in a fixed order.
// A failed generation call degrades to a placeholder carrying the error
// message; enrichment itself never fails.
func (e *Enricher) Narratives(ctx context.Context, description string) Narratives {
	var n Narratives
	n.Threats = e.generate(ctx, promptPreamble+"provide the threat from the description: "+description)
	n.Recommendations = e.generate(ctx, promptPreamble+"provide recommendation for mitigating the threats with the description: "+description)
	n.Impact = e.generate(ctx, promptPreamble+"what is the potential impact of the vulnerability as described: "+description)
	n.AffectedSystems = e.generate(ctx, promptPreamble+"list the affected systems from the description: "+description)
	return n
}

func (e *Enricher) generate(ctx context.Context, prompt string) string {
	text, err := e.generator.Generate(ctx, prompt)
	if err != nil {
		e.logger.WithError(err).Warn("Narrative generation failed, storing placeholder")
		if e.failures != nil {
			e.failures.Inc()
		}
		return fmt.Sprintf("Currently unable to generate text: %v", err)
	}
	return text
}
