// ABOUTME: GORM-backed persistence layer for categories, devices, and vulnerabilities.
// ABOUTME: Handles connection setup with retries and schema migration.

package store

import (
	"errors"
	"time"

	"github.com/openhomesec/VulnTrack/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a lookup does not match a stored row.
var ErrNotFound = errors.New("not found")

// Store wraps the database handle and exposes the persistence operations the
// rest of the system needs.
type Store struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// New wraps an already opened database handle. Used by tests and by Open.
func New(db *gorm.DB, logger *logrus.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// Open connects to Postgres, retrying while the database comes up.
func Open(dsn string, logger *logrus.Logger) (*Store, error) {
	const maxAttempts = 10

	var db *gorm.DB
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err == nil {
			logger.WithField("attempt", attempt).Info("Connected to database")
			return New(db, logger), nil
		}
		logger.WithError(err).WithFields(logrus.Fields{
			"attempt":      attempt,
			"max_attempts": maxAttempts,
		}).Warn("Database connection failed, retrying")
		time.Sleep(2 * time.Second)
	}

	return nil, err
}

// Migrate creates or updates the schema for all models.
func (s *Store) Migrate() error {
	return s.db.AutoMigrate(
		&models.Category{},
		&models.Device{},
		&models.Vulnerability{},
		&models.Metric{},
	)
}
