// ABOUTME: Vulnerability persistence operations.
// ABOUTME: Dedup lookup by CVE ID and conflict-ignoring bulk save.

package store

import (
	"github.com/openhomesec/VulnTrack/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VulnerabilityExists reports whether a vulnerability with the given CVE ID
// is already stored. The check is global, not scoped to a device.
func (s *Store) VulnerabilityExists(cveID string) (bool, error) {
	var count int64
	err := s.db.Model(&models.Vulnerability{}).
		Where("cve_id = ?", cveID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// SaveVulnerabilities writes the batch in one transaction. Rows whose CVE ID
// is already stored are skipped instead of failing the batch, which closes
// the check-then-insert race between concurrent ingestion runs. Metric rows
// are written only for vulnerabilities that were actually inserted, so a
// conflict-skipped row leaves nothing behind.
func (s *Store) SaveVulnerabilities(vulns []models.Vulnerability) error {
	if len(vulns) == 0 {
		return nil
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		for i := range vulns {
			res := tx.
				Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "cve_id"}},
					DoNothing: true,
				}).
				Omit("Metrics").
				Create(&vulns[i])
			if res.Error != nil {
				return res.Error
			}
			// zero rows affected means the conflict clause skipped the
			// insert; its metrics must not be written either
			if res.RowsAffected == 0 || len(vulns[i].Metrics) == 0 {
				continue
			}
			for j := range vulns[i].Metrics {
				vulns[i].Metrics[j].VulnerabilityID = vulns[i].ID
			}
			if err := tx.Create(&vulns[i].Metrics).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// VulnerabilitiesForDevice returns every stored vulnerability of the device,
// including records from earlier ingestion runs.
func (s *Store) VulnerabilitiesForDevice(deviceID uint) ([]models.Vulnerability, error) {
	var vulns []models.Vulnerability
	err := s.db.
		Preload("Metrics").
		Where("device_id = ?", deviceID).
		Order("id asc").
		Find(&vulns).Error
	if err != nil {
		return nil, err
	}
	return vulns, nil
}
