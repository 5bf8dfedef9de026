// ABOUTME: Common types shared across the vulntrack system.
// ABOUTME: Defines wire structures for CVE records, descriptions, and raw CVSS metrics.

package types

// Description is one language-tagged description entry of a CVE record.
type Description struct {
	Lang  string `json:"lang"`
	Value string `json:"value"`
}

// Reference is a single advisory link attached to a CVE record.
type Reference struct {
	URL string `json:"url"`
}

// CvssData is the nested scoring block of a raw CVSS metric. Field names of
// both schema generations live side by side; whichever generation produced
// the block leaves the other generation's fields empty.
type CvssData struct {
	Version string `json:"version"`

	// CVSS v3 names
	AttackVector       string `json:"attackVector,omitempty"`
	AttackComplexity   string `json:"attackComplexity,omitempty"`
	PrivilegesRequired string `json:"privilegesRequired,omitempty"`
	UserInteraction    string `json:"userInteraction,omitempty"`
	Scope              string `json:"scope,omitempty"`

	// CVSS v2 names
	AccessVector     string `json:"accessVector,omitempty"`
	AccessComplexity string `json:"accessComplexity,omitempty"`
	Authentication   string `json:"authentication,omitempty"`

	ConfidentialityImpact string  `json:"confidentialityImpact,omitempty"`
	IntegrityImpact       string  `json:"integrityImpact,omitempty"`
	AvailabilityImpact    string  `json:"availabilityImpact,omitempty"`
	BaseScore             float64 `json:"baseScore,omitempty"`
	BaseSeverity          string  `json:"baseSeverity,omitempty"`
}

// RawMetric is one scoring metric as returned by the vulnerability source:
// a CvssData block plus the wrapper-level fields that live outside it.
type RawMetric struct {
	CvssData            CvssData `json:"cvssData"`
	ExploitabilityScore float64  `json:"exploitabilityScore,omitempty"`
	ImpactScore         float64  `json:"impactScore,omitempty"`

	// v2 responses carry severity and the interaction flag on the wrapper,
	// not inside cvssData.
	BaseSeverity            string `json:"baseSeverity,omitempty"`
	UserInteractionRequired bool   `json:"userInteractionRequired,omitempty"`
}

// SourceMetrics groups the optional per-schema metric arrays of a CVE record.
type SourceMetrics struct {
	CvssMetricV30 []RawMetric `json:"cvssMetricV30,omitempty"`
	CvssMetricV31 []RawMetric `json:"cvssMetricV31,omitempty"`
	CvssMetricV2  []RawMetric `json:"cvssMetricV2,omitempty"`
}

// SourceItem is one vulnerability record as returned by the external source.
type SourceItem struct {
	ID           string        `json:"id"`
	LastModified string        `json:"lastModified"`
	VulnStatus   string        `json:"vulnStatus"`
	Descriptions []Description `json:"descriptions"`
	References   []Reference   `json:"references"`
	Metrics      SourceMetrics `json:"metrics"`
}

// PreferredV3Metrics returns the v3.0 metric block when present, else v3.1.
func (s SourceItem) PreferredV3Metrics() []RawMetric {
	if len(s.Metrics.CvssMetricV30) > 0 {
		return s.Metrics.CvssMetricV30
	}
	return s.Metrics.CvssMetricV31
}
