// ABOUTME: GORM models for categories, devices, and their vulnerability records.
// ABOUTME: Defines the relational schema including cascade semantics and the dedup key.

package models

import "gorm.io/gorm"

// Category groups devices, e.g. "Smart Lighting" or "Cameras".
type Category struct {
	gorm.Model
	Name    string   `gorm:"size:255;not null" json:"name"`
	Devices []Device `gorm:"constraint:OnDelete:CASCADE" json:"devices,omitempty"`
}

// Device is a registered smart-home device. Its name doubles as the keyword
// used to query the external vulnerability source.
type Device struct {
	gorm.Model
	CategoryID      uint            `json:"categoryId"`
	Category        Category        `json:"category,omitempty"`
	Name            string          `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Vulnerabilities []Vulnerability `gorm:"constraint:OnDelete:CASCADE" json:"vulnerabilities,omitempty"`
}

// Vulnerability is one externally sourced advisory attached to a device.
// CVEID is unique across the whole store, not per device.
type Vulnerability struct {
	gorm.Model
	DeviceID     uint     `json:"deviceId"`
	CVEID        string   `gorm:"size:64;not null;uniqueIndex" json:"cveId"`
	Description  string   `gorm:"type:text" json:"description"`
	LastModified string   `gorm:"size:64" json:"lastModified"`
	Status       string   `gorm:"size:64" json:"status"`
	References   []string `gorm:"serializer:json" json:"references"`
	Metrics      []Metric `gorm:"constraint:OnDelete:CASCADE" json:"metrics"`

	// Generated narratives. Each may hold a placeholder when the
	// generation call failed.
	Threats         string `gorm:"type:text" json:"threats"`
	Impact          string `gorm:"type:text" json:"impact"`
	Recommendations string `gorm:"type:text" json:"recommendations"`
	AffectedSystems string `gorm:"type:text" json:"affectedSystems"`
}

// Metric is the canonical, schema-version-independent scoring record. Rows
// are written once as part of their vulnerability and never updated; they are
// removed only when the owning vulnerability is deleted.
type Metric struct {
	ID              uint `gorm:"primarykey" json:"-"`
	VulnerabilityID uint `json:"-"`

	SchemaVersion         string  `gorm:"size:16" json:"schemaVersion"`
	AttackVector          string  `gorm:"size:32" json:"attackVector"`
	AttackComplexity      string  `gorm:"size:32" json:"attackComplexity"`
	PrivilegesRequired    string  `gorm:"size:32" json:"privilegesRequired"`
	UserInteraction       string  `gorm:"size:32" json:"userInteraction"`
	Scope                 string  `gorm:"size:32" json:"scope"`
	ConfidentialityImpact string  `gorm:"size:32" json:"confidentialityImpact"`
	IntegrityImpact       string  `gorm:"size:32" json:"integrityImpact"`
	AvailabilityImpact    string  `gorm:"size:32" json:"availabilityImpact"`
	BaseScore             float64 `json:"baseScore"`
	BaseSeverity          string  `gorm:"size:32" json:"baseSeverity"`
	ExploitabilityScore   float64 `json:"exploitabilityScore"`
	ImpactScore           float64 `json:"impactScore"`
}
