// ABOUTME: Score normalizer mapping raw CVSS v2/v3 metrics into the canonical shape.
// ABOUTME: Handles the v2 field-name translation and per-field defaulting to "NONE"/0.

package normalize

import (
	"strings"

	"github.com/openhomesec/VulnTrack/internal/models"
	"github.com/openhomesec/VulnTrack/internal/types"
)

// DefaultLabel is the value every canonical string field falls back to when
// the source metric does not carry it.
const DefaultLabel = "NONE"

type schema int

const (
	schemaUnknown schema = iota
	schemaV2
	schemaV3
)

func schemaOf(version string) schema {
	switch {
	case strings.HasPrefix(version, "3"):
		return schemaV3
	case strings.HasPrefix(version, "2"):
		return schemaV2
	default:
		return schemaUnknown
	}
}

// Canonical maps one raw scoring metric into a canonical metric record.
// An unrecognized or missing schema version is not an error; the record
// degrades to all defaults.
//
// Numeric fields keep the upstream convention that a zero value counts as
// absent and stays at the default 0. Do not "fix" this; stored records must
// stay comparable with data ingested by earlier versions.
func Canonical(raw types.RawMetric) models.Metric {
	m := defaults()
	data := raw.CvssData

	switch schemaOf(data.Version) {
	case schemaV3:
		m.SchemaVersion = orDefault(data.Version)
		m.AttackVector = orDefault(data.AttackVector)
		m.AttackComplexity = orDefault(data.AttackComplexity)
		m.PrivilegesRequired = orDefault(data.PrivilegesRequired)
		m.UserInteraction = orDefault(data.UserInteraction)
		m.Scope = orDefault(data.Scope)
		m.ConfidentialityImpact = orDefault(data.ConfidentialityImpact)
		m.IntegrityImpact = orDefault(data.IntegrityImpact)
		m.AvailabilityImpact = orDefault(data.AvailabilityImpact)
		m.BaseScore = data.BaseScore
		m.BaseSeverity = orDefault(data.BaseSeverity)
		// sub-scores live on the wrapper, not in the data block
		m.ExploitabilityScore = raw.ExploitabilityScore
		m.ImpactScore = raw.ImpactScore

	case schemaV2:
		m.SchemaVersion = orDefault(data.Version)
		m.AttackVector = orDefault(data.AccessVector)
		m.AttackComplexity = orDefault(data.AccessComplexity)
		m.PrivilegesRequired = orDefault(data.Authentication)
		if raw.UserInteractionRequired {
			m.UserInteraction = "REQUIRED"
		}
		// scope has no v2 equivalent and stays at the default
		m.ConfidentialityImpact = orDefault(data.ConfidentialityImpact)
		m.IntegrityImpact = orDefault(data.IntegrityImpact)
		m.AvailabilityImpact = orDefault(data.AvailabilityImpact)
		m.BaseScore = data.BaseScore
		// v2 responses carry severity on the wrapper, not in the data block
		m.BaseSeverity = orDefault(raw.BaseSeverity)
		m.ExploitabilityScore = raw.ExploitabilityScore
		m.ImpactScore = raw.ImpactScore
	}

	return m
}

func defaults() models.Metric {
	return models.Metric{
		SchemaVersion:         DefaultLabel,
		AttackVector:          DefaultLabel,
		AttackComplexity:      DefaultLabel,
		PrivilegesRequired:    DefaultLabel,
		UserInteraction:       DefaultLabel,
		Scope:                 DefaultLabel,
		ConfidentialityImpact: DefaultLabel,
		IntegrityImpact:       DefaultLabel,
		AvailabilityImpact:    DefaultLabel,
		BaseSeverity:          DefaultLabel,
	}
}

func orDefault(v string) string {
	if v == "" {
		return DefaultLabel
	}
	return v
}
