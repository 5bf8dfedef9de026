// ABOUTME: Category persistence operations.
// ABOUTME: Simple CRUD over the categories table.

package store

import (
	"errors"

	"github.com/openhomesec/VulnTrack/internal/models"

	"gorm.io/gorm"
)

func (s *Store) CreateCategory(name string) (models.Category, error) {
	category := models.Category{Name: name}
	if err := s.db.Create(&category).Error; err != nil {
		return models.Category{}, err
	}
	return category, nil
}

func (s *Store) ListCategories() ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.Preload("Devices").Order("id asc").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *Store) DeleteCategory(id uint) error {
	result := s.db.Delete(&models.Category{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) categoryByID(id uint) (models.Category, error) {
	var category models.Category
	if err := s.db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Category{}, ErrNotFound
		}
		return models.Category{}, err
	}
	return category, nil
}
