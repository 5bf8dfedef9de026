// ABOUTME: Ingestion engine orchestrating source queries, dedup, normalization, and enrichment.
// ABOUTME: Coordinates the vulnerability source, score normalizer, enricher, and store per device.

package engine

import (
	"context"
	"time"

	"github.com/openhomesec/VulnTrack/internal/cache"
	"github.com/openhomesec/VulnTrack/internal/enrich"
	"github.com/openhomesec/VulnTrack/internal/metrics"
	"github.com/openhomesec/VulnTrack/internal/models"
	"github.com/openhomesec/VulnTrack/internal/normalize"
	"github.com/openhomesec/VulnTrack/internal/types"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrSourceUnavailable marks a failed query against the external
// vulnerability source. Callers map it to an upstream-failure response.
var ErrSourceUnavailable = errors.New("vulnerability source unavailable")

// VulnerabilitySource abstracts the external vulnerability database queried
// per device keyword.
type VulnerabilitySource interface {
	Name() string
	Search(ctx context.Context, keyword string) ([]types.SourceItem, error)
}

// Store is the persistence surface the engine needs.
type Store interface {
	DeviceByName(name string) (models.Device, error)
	VulnerabilityExists(cveID string) (bool, error)
	SaveVulnerabilities(vulns []models.Vulnerability) error
	VulnerabilitiesForDevice(deviceID uint) ([]models.Vulnerability, error)
}

// Config holds configuration for the service.
type Config struct {
	Port         int
	DatabaseDSN  string
	NVDEndpoint  string
	SourceFile   string
	OpenAIAPIKey string
	CacheTTL     time.Duration
	MockMode     bool // Enable mock providers for local testing
}

// Engine runs the ingestion pipeline for one device at a time.
type Engine struct {
	source   VulnerabilitySource
	store    Store
	enricher *enrich.Enricher
	cache    *cache.SearchCache
	metrics  *metrics.Metrics
	logger   *logrus.Logger
}

// NewEngine creates an ingestion engine.
func NewEngine(source VulnerabilitySource, store Store, enricher *enrich.Enricher, m *metrics.Metrics, config *Config, logger *logrus.Logger) *Engine {
	ttl := config.CacheTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Engine{
		source:   source,
		store:    store,
		enricher: enricher,
		cache:    cache.NewSearchCache(ttl, logger),
		metrics:  m,
		logger:   logger,
	}
}

// Ingest fetches the current advisories for a device, stores the new ones,
// and returns the device's full stored vulnerability set, including records
// from earlier runs.
//
// Device resolution and source failures abort the run; a failed narrative
// generation only degrades the affected field.
func (e *Engine) Ingest(ctx context.Context, deviceName string) ([]models.Vulnerability, error) {
	logger := e.logger.WithFields(logrus.Fields{
		"operation": "ingest",
		"device":    deviceName,
	})
	startTime := time.Now()

	device, err := e.store.DeviceByName(deviceName)
	if err != nil {
		e.metrics.IngestRuns.WithLabelValues("device_not_found").Inc()
		return nil, errors.Wrapf(err, "no device found with the name %q", deviceName)
	}

	items, err := e.searchSource(ctx, deviceName)
	if err != nil {
		e.metrics.IngestRuns.WithLabelValues("source_error").Inc()
		e.metrics.SourceErrors.Inc()
		return nil, errors.Wrapf(ErrSourceUnavailable, "failed to fetch vulnerabilities: %v", err)
	}

	logger.WithField("item_count", len(items)).Info("Fetched source items")

	var newVulns []models.Vulnerability
	seen := make(map[string]struct{})

	for _, item := range items {
		e.metrics.ItemsSeen.Inc()

		// the same CVE ID can appear twice in one response
		if _, dup := seen[item.ID]; dup {
			e.metrics.DuplicatesSkipped.Inc()
			continue
		}

		exists, err := e.store.VulnerabilityExists(item.ID)
		if err != nil {
			e.metrics.IngestRuns.WithLabelValues("store_error").Inc()
			return nil, errors.Wrap(err, "failed to check for existing vulnerability")
		}
		if exists {
			e.metrics.DuplicatesSkipped.Inc()
			logger.WithField("cve_id", item.ID).Debug("Skipping already stored vulnerability")
			continue
		}

		description, ok := canonicalDescription(item)
		if !ok {
			e.metrics.ItemsSkipped.Inc()
			logger.WithField("cve_id", item.ID).Warn("Source item carries no descriptions, skipping")
			continue
		}

		newVulns = append(newVulns, e.buildRecord(ctx, device, item, description))
		seen[item.ID] = struct{}{}
	}

	if err := e.store.SaveVulnerabilities(newVulns); err != nil {
		e.metrics.IngestRuns.WithLabelValues("store_error").Inc()
		return nil, errors.Wrap(err, "failed to save vulnerabilities")
	}
	e.metrics.RecordsCreated.Add(float64(len(newVulns)))

	stored, err := e.store.VulnerabilitiesForDevice(device.ID)
	if err != nil {
		e.metrics.IngestRuns.WithLabelValues("store_error").Inc()
		return nil, errors.Wrap(err, "failed to read stored vulnerabilities")
	}

	duration := time.Since(startTime)
	e.metrics.IngestRuns.WithLabelValues("ok").Inc()
	e.metrics.IngestDuration.Observe(duration.Seconds())
	e.metrics.StoredVulnerabilities.WithLabelValues(device.Name).Set(float64(len(stored)))

	logger.WithFields(logrus.Fields{
		"duration":    duration,
		"new_records": len(newVulns),
		"total":       len(stored),
	}).Info("Ingestion completed")

	return stored, nil
}

// buildRecord normalizes the metrics of one source item, generates its four
// narratives, and assembles the record to persist.
func (e *Engine) buildRecord(ctx context.Context, device models.Device, item types.SourceItem, description string) models.Vulnerability {
	// v3 metrics first (3.0 block preferred over 3.1), then all v2 metrics
	var metricRecords []models.Metric
	for _, raw := range item.PreferredV3Metrics() {
		metricRecords = append(metricRecords, normalize.Canonical(raw))
	}
	for _, raw := range item.Metrics.CvssMetricV2 {
		metricRecords = append(metricRecords, normalize.Canonical(raw))
	}

	narratives := e.enricher.Narratives(ctx, description)

	references := make([]string, len(item.References))
	for i, ref := range item.References {
		references[i] = ref.URL
	}

	return models.Vulnerability{
		DeviceID:        device.ID,
		CVEID:           item.ID,
		Description:     description,
		LastModified:    item.LastModified,
		Status:          item.VulnStatus,
		References:      references,
		Metrics:         metricRecords,
		Threats:         narratives.Threats,
		Impact:          narratives.Impact,
		Recommendations: narratives.Recommendations,
		AffectedSystems: narratives.AffectedSystems,
	}
}

func (e *Engine) searchSource(ctx context.Context, keyword string) ([]types.SourceItem, error) {
	if items, ok := e.cache.Get(keyword); ok {
		return items, nil
	}

	items, err := e.source.Search(ctx, keyword)
	if err != nil {
		return nil, err
	}

	e.cache.Set(keyword, items)
	return items, nil
}

// canonicalDescription picks the English description when one carries text,
// else the first entry. Items without any description are skipped upstream.
func canonicalDescription(item types.SourceItem) (string, bool) {
	if len(item.Descriptions) == 0 {
		return "", false
	}
	for _, d := range item.Descriptions {
		if d.Lang == "en" && d.Value != "" {
			return d.Value, true
		}
	}
	return item.Descriptions[0].Value, true
}
