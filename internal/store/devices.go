// ABOUTME: Device persistence operations.
// ABOUTME: Device creation requires an existing category; lookups resolve by exact name.

package store

import (
	"errors"

	"github.com/openhomesec/VulnTrack/internal/models"

	"gorm.io/gorm"
)

// CreateDevice registers a device under an existing category. Returns
// ErrNotFound when the category does not exist.
func (s *Store) CreateDevice(name string, categoryID uint) (models.Device, error) {
	category, err := s.categoryByID(categoryID)
	if err != nil {
		return models.Device{}, err
	}

	device := models.Device{Name: name, CategoryID: category.ID}
	if err := s.db.Create(&device).Error; err != nil {
		return models.Device{}, err
	}
	device.Category = category
	return device, nil
}

func (s *Store) ListDevices() ([]models.Device, error) {
	var devices []models.Device
	err := s.db.
		Preload("Category").
		Preload("Vulnerabilities").
		Preload("Vulnerabilities.Metrics").
		Order("id asc").
		Find(&devices).Error
	if err != nil {
		return nil, err
	}
	return devices, nil
}

func (s *Store) DeleteDevice(id uint) error {
	result := s.db.Delete(&models.Device{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeviceByName resolves a device by exact name match.
func (s *Store) DeviceByName(name string) (models.Device, error) {
	var device models.Device
	if err := s.db.Where("name = ?", name).First(&device).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Device{}, ErrNotFound
		}
		return models.Device{}, err
	}
	return device, nil
}
