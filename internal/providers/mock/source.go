// ABOUTME: Mock vulnerability source for local testing and development.
// ABOUTME: Provides realistic canned CVE records without calling the live NVD API.

package mock

import (
	"context"
	"strings"

	"github.com/openhomesec/VulnTrack/internal/types"

	"github.com/sirupsen/logrus"
)

// Source implements the vulnerability source interface with canned data.
type Source struct {
	logger *logrus.Logger
}

// NewSource creates a new mock vulnerability source.
func NewSource(logger *logrus.Logger) *Source {
	return &Source{
		logger: logger,
	}
}

// Name returns the name of this vulnerability source.
func (m *Source) Name() string {
	return "mock-nvd"
}

// Search returns canned CVE records. The profile depends on the device
// keyword so different device classes exercise different metric shapes.
func (m *Source) Search(ctx context.Context, keyword string) ([]types.SourceItem, error) {
	m.logger.WithField("keyword", keyword).Debug("Returning mock vulnerability data")

	lower := strings.ToLower(keyword)
	switch {
	case strings.Contains(lower, "camera"):
		return m.cameraVulns(), nil
	case strings.Contains(lower, "lock"):
		return m.lockVulns(), nil
	case strings.Contains(lower, "bulb") || strings.Contains(lower, "light"):
		return m.bulbVulns(), nil
	default:
		return m.genericVulns(), nil
	}
}

func (m *Source) cameraVulns() []types.SourceItem {
	return []types.SourceItem{
		{
			ID:           "CVE-2024-10001",
			LastModified: "2024-06-12T08:30:00.000",
			VulnStatus:   "Analyzed",
			Descriptions: []types.Description{
				{Lang: "en", Value: "The RTSP service of the camera accepts unauthenticated stream requests, exposing the live video feed to anyone on the local network."},
			},
			References: []types.Reference{
				{URL: "https://nvd.nist.gov/vuln/detail/CVE-2024-10001"},
			},
			Metrics: types.SourceMetrics{
				CvssMetricV31: []types.RawMetric{
					{
						CvssData: types.CvssData{
							Version:               "3.1",
							AttackVector:          "ADJACENT_NETWORK",
							AttackComplexity:      "LOW",
							PrivilegesRequired:    "NONE",
							UserInteraction:       "NONE",
							Scope:                 "UNCHANGED",
							ConfidentialityImpact: "HIGH",
							IntegrityImpact:       "NONE",
							AvailabilityImpact:    "NONE",
							BaseScore:             6.5,
							BaseSeverity:          "MEDIUM",
						},
						ExploitabilityScore: 2.8,
						ImpactScore:         3.6,
					},
				},
			},
		},
		{
			ID:           "CVE-2024-10002",
			LastModified: "2024-05-03T14:00:00.000",
			VulnStatus:   "Modified",
			Descriptions: []types.Description{
				{Lang: "en", Value: "A stack buffer overflow in the camera's ONVIF handler allows remote code execution via a crafted SOAP request."},
			},
			References: []types.Reference{
				{URL: "https://nvd.nist.gov/vuln/detail/CVE-2024-10002"},
				{URL: "https://example.com/onvif-advisory"},
			},
			Metrics: types.SourceMetrics{
				CvssMetricV31: []types.RawMetric{
					{
						CvssData: types.CvssData{
							Version:               "3.1",
							AttackVector:          "NETWORK",
							AttackComplexity:      "LOW",
							PrivilegesRequired:    "NONE",
							UserInteraction:       "NONE",
							Scope:                 "UNCHANGED",
							ConfidentialityImpact: "HIGH",
							IntegrityImpact:       "HIGH",
							AvailabilityImpact:    "HIGH",
							BaseScore:             9.8,
							BaseSeverity:          "CRITICAL",
						},
						ExploitabilityScore: 3.9,
						ImpactScore:         5.9,
					},
				},
				CvssMetricV2: []types.RawMetric{
					{
						CvssData: types.CvssData{
							Version:               "2.0",
							AccessVector:          "NETWORK",
							AccessComplexity:      "LOW",
							Authentication:        "NONE",
							ConfidentialityImpact: "COMPLETE",
							IntegrityImpact:       "COMPLETE",
							AvailabilityImpact:    "COMPLETE",
							BaseScore:             10.0,
						},
						BaseSeverity:        "HIGH",
						ExploitabilityScore: 10.0,
						ImpactScore:         10.0,
					},
				},
			},
		},
	}
}

func (m *Source) lockVulns() []types.SourceItem {
	return []types.SourceItem{
		{
			ID:           "CVE-2024-20001",
			LastModified: "2024-04-22T09:15:00.000",
			VulnStatus:   "Analyzed",
			Descriptions: []types.Description{
				{Lang: "en", Value: "The BLE pairing protocol of the smart lock reuses a static pairing key, allowing replay attacks that unlock the door."},
				{Lang: "es", Value: "El protocolo de emparejamiento BLE reutiliza una clave estatica."},
			},
			References: []types.Reference{
				{URL: "https://nvd.nist.gov/vuln/detail/CVE-2024-20001"},
			},
			Metrics: types.SourceMetrics{
				CvssMetricV30: []types.RawMetric{
					{
						CvssData: types.CvssData{
							Version:               "3.0",
							AttackVector:          "ADJACENT_NETWORK",
							AttackComplexity:      "LOW",
							PrivilegesRequired:    "NONE",
							UserInteraction:       "NONE",
							Scope:                 "UNCHANGED",
							ConfidentialityImpact: "NONE",
							IntegrityImpact:       "HIGH",
							AvailabilityImpact:    "NONE",
							BaseScore:             7.1,
							BaseSeverity:          "HIGH",
						},
						ExploitabilityScore: 2.8,
						ImpactScore:         4.2,
					},
				},
			},
		},
	}
}

func (m *Source) bulbVulns() []types.SourceItem {
	return []types.SourceItem{
		{
			ID:           "CVE-2024-0001",
			LastModified: "2024-03-01T10:00:00.000",
			VulnStatus:   "Analyzed",
			Descriptions: []types.Description{
				{Lang: "en", Value: "The bulb firmware exposes an unauthenticated configuration endpoint allowing attackers on the same network to flash arbitrary firmware."},
				{Lang: "fr", Value: "Le firmware de l'ampoule expose un point de configuration non authentifie."},
			},
			References: []types.Reference{
				{URL: "https://nvd.nist.gov/vuln/detail/CVE-2024-0001"},
			},
			Metrics: types.SourceMetrics{
				CvssMetricV31: []types.RawMetric{
					{
						CvssData: types.CvssData{
							Version:               "3.1",
							AttackVector:          "ADJACENT_NETWORK",
							AttackComplexity:      "LOW",
							PrivilegesRequired:    "NONE",
							UserInteraction:       "NONE",
							Scope:                 "CHANGED",
							ConfidentialityImpact: "HIGH",
							IntegrityImpact:       "HIGH",
							AvailabilityImpact:    "HIGH",
							BaseScore:             7.5,
							BaseSeverity:          "HIGH",
						},
						ExploitabilityScore: 2.8,
						ImpactScore:         4.7,
					},
				},
			},
		},
	}
}

func (m *Source) genericVulns() []types.SourceItem {
	return []types.SourceItem{
		{
			ID:           "CVE-2024-30001",
			LastModified: "2024-02-14T16:45:00.000",
			VulnStatus:   "Awaiting Analysis",
			Descriptions: []types.Description{
				{Lang: "en", Value: "The device's cloud agent transmits telemetry over plain HTTP, exposing usage data to network observers."},
			},
			References: []types.Reference{
				{URL: "https://nvd.nist.gov/vuln/detail/CVE-2024-30001"},
			},
			// awaiting analysis: no metrics published yet
			Metrics: types.SourceMetrics{},
		},
	}
}
