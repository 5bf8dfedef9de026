// ABOUTME: Tests for the ingestion engine orchestration.
// ABOUTME: Covers dedup, normalization wiring, enrichment degradation, and failure propagation.

package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/openhomesec/VulnTrack/internal/enrich"
	"github.com/openhomesec/VulnTrack/internal/metrics"
	"github.com/openhomesec/VulnTrack/internal/models"
	"github.com/openhomesec/VulnTrack/internal/types"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Mock implementations for testing
type MockSource struct {
	items        []types.SourceItem
	searchCalls  int
	shouldError  bool
	errorMessage string
}

func (m *MockSource) Name() string {
	return "mock-source"
}

func (m *MockSource) Search(ctx context.Context, keyword string) ([]types.SourceItem, error) {
	m.searchCalls++
	if m.shouldError {
		return nil, errors.New(m.errorMessage)
	}
	return m.items, nil
}

var errNotFound = errors.New("not found")

type MockStore struct {
	devices    map[string]models.Device
	stored     []models.Vulnerability
	saveCalls  int
	failExists bool
	failSave   bool
	failRead   bool
}

func newMockStore(deviceNames ...string) *MockStore {
	devices := make(map[string]models.Device)
	for i, name := range deviceNames {
		devices[name] = models.Device{Model: gorm.Model{ID: uint(i + 1)}, Name: name}
	}
	return &MockStore{devices: devices}
}

func (m *MockStore) DeviceByName(name string) (models.Device, error) {
	device, ok := m.devices[name]
	if !ok {
		return models.Device{}, errNotFound
	}
	return device, nil
}

func (m *MockStore) VulnerabilityExists(cveID string) (bool, error) {
	if m.failExists {
		return false, errors.New("exists query failed")
	}
	for _, v := range m.stored {
		if v.CVEID == cveID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockStore) SaveVulnerabilities(vulns []models.Vulnerability) error {
	m.saveCalls++
	if m.failSave {
		return errors.New("bulk save failed")
	}
	// mirror the store's insert-or-ignore semantics
	for _, v := range vulns {
		exists := false
		for _, s := range m.stored {
			if s.CVEID == v.CVEID {
				exists = true
				break
			}
		}
		if !exists {
			m.stored = append(m.stored, v)
		}
	}
	return nil
}

func (m *MockStore) VulnerabilitiesForDevice(deviceID uint) ([]models.Vulnerability, error) {
	if m.failRead {
		return nil, errors.New("read failed")
	}
	var result []models.Vulnerability
	for _, v := range m.stored {
		if v.DeviceID == deviceID {
			result = append(result, v)
		}
	}
	return result, nil
}

type MockGenerator struct {
	calls       []string
	shouldError bool
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.calls = append(m.calls, prompt)
	if m.shouldError {
		return "", errors.New("generation unavailable")
	}
	return "generated narrative", nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func testEngine(source VulnerabilitySource, store Store, gen enrich.Generator) *Engine {
	logger := testLogger()
	m := metrics.New()
	enricher := enrich.New(gen, logger, m.GenerationFailures)
	return NewEngine(source, store, enricher, m, &Config{}, logger)
}

func bulbItem() types.SourceItem {
	return types.SourceItem{
		ID:           "CVE-2024-0001",
		LastModified: "2024-03-01T10:00:00.000",
		VulnStatus:   "Analyzed",
		Descriptions: []types.Description{
			{Lang: "en", Value: "English description"},
			{Lang: "fr", Value: "Description francaise"},
		},
		References: []types.Reference{{URL: "https://example.com/advisory"}},
		Metrics: types.SourceMetrics{
			CvssMetricV31: []types.RawMetric{{
				CvssData: types.CvssData{
					Version:      "3.1",
					AttackVector: "NETWORK",
					BaseScore:    7.5,
					BaseSeverity: "HIGH",
				},
				ExploitabilityScore: 3.9,
				ImpactScore:         3.6,
			}},
		},
	}
}

func TestIngestCreatesRecord(t *testing.T) {
	store := newMockStore("Smart Bulb X")
	source := &MockSource{items: []types.SourceItem{bulbItem()}}
	gen := &MockGenerator{}

	engine := testEngine(source, store, gen)

	stored, err := engine.Ingest(context.Background(), "Smart Bulb X")
	if err != nil {
		t.Fatalf("Ingest() returned error: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("Expected 1 stored vulnerability, got %d", len(stored))
	}

	vuln := stored[0]
	if vuln.CVEID != "CVE-2024-0001" {
		t.Errorf("CVEID mismatch: got %s", vuln.CVEID)
	}
	if vuln.Description != "English description" {
		t.Errorf("Expected the English description, got %q", vuln.Description)
	}
	if vuln.Status != "Analyzed" {
		t.Errorf("Status mismatch: got %s", vuln.Status)
	}
	if len(vuln.References) != 1 || vuln.References[0] != "https://example.com/advisory" {
		t.Errorf("References mismatch: got %v", vuln.References)
	}

	if len(vuln.Metrics) != 1 {
		t.Fatalf("Expected 1 metric, got %d", len(vuln.Metrics))
	}
	metric := vuln.Metrics[0]
	if metric.BaseScore != 7.5 {
		t.Errorf("BaseScore mismatch: got %v", metric.BaseScore)
	}
	if metric.BaseSeverity != "HIGH" {
		t.Errorf("BaseSeverity mismatch: got %s", metric.BaseSeverity)
	}
	if !strings.HasPrefix(metric.SchemaVersion, "3") {
		t.Errorf("Expected a version-3 schema tag, got %s", metric.SchemaVersion)
	}

	if vuln.Threats != "generated narrative" || vuln.AffectedSystems != "generated narrative" {
		t.Error("Expected generated narratives on the record")
	}
	if len(gen.calls) != 4 {
		t.Errorf("Expected 4 generation calls, got %d", len(gen.calls))
	}
}

func TestIngestDeviceNotFound(t *testing.T) {
	store := newMockStore()
	source := &MockSource{}
	engine := testEngine(source, store, &MockGenerator{})

	_, err := engine.Ingest(context.Background(), "Unknown Device")
	if err == nil {
		t.Fatal("Expected error for unknown device")
	}
	if !errors.Is(err, errNotFound) {
		t.Errorf("Expected the store's not-found error in the chain, got %v", err)
	}
	if source.searchCalls != 0 {
		t.Error("Source must not be queried when the device is unknown")
	}
}

func TestIngestSourceFailureIsFatal(t *testing.T) {
	store := newMockStore("Smart Bulb X")
	source := &MockSource{shouldError: true, errorMessage: "connection refused"}
	engine := testEngine(source, store, &MockGenerator{})

	_, err := engine.Ingest(context.Background(), "Smart Bulb X")
	if err == nil {
		t.Fatal("Expected error when the source query fails")
	}
	if !strings.Contains(err.Error(), "failed to fetch vulnerabilities") {
		t.Errorf("Expected a wrapped fetch error, got %v", err)
	}
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Errorf("Expected the source-unavailable marker in the chain, got %v", err)
	}
	if store.saveCalls != 0 {
		t.Error("Nothing must be saved when the source query fails")
	}
}

func TestIngestIsIdempotent(t *testing.T) {
	store := newMockStore("Smart Bulb X")
	source := &MockSource{items: []types.SourceItem{bulbItem()}}
	gen := &MockGenerator{}
	engine := testEngine(source, store, gen)

	first, err := engine.Ingest(context.Background(), "Smart Bulb X")
	if err != nil {
		t.Fatal(err)
	}
	second, err := engine.Ingest(context.Background(), "Smart Bulb X")
	if err != nil {
		t.Fatal(err)
	}

	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("Expected 1 stored vulnerability after both runs, got %d then %d", len(first), len(second))
	}
	if len(gen.calls) != 4 {
		t.Errorf("Second run must not generate narratives again, got %d calls", len(gen.calls))
	}
}

func TestIngestSkipsDuplicateWithinOneResponse(t *testing.T) {
	item := bulbItem()
	store := newMockStore("Smart Bulb X")
	source := &MockSource{items: []types.SourceItem{item, item}}
	gen := &MockGenerator{}
	engine := testEngine(source, store, gen)

	stored, err := engine.Ingest(context.Background(), "Smart Bulb X")
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 1 {
		t.Fatalf("Expected 1 stored vulnerability, got %d", len(stored))
	}
	if len(gen.calls) != 4 {
		t.Errorf("Duplicate item must not be enriched, got %d generation calls", len(gen.calls))
	}
}

func TestIngestGenerationFailureDoesNotAbort(t *testing.T) {
	store := newMockStore("Smart Bulb X")
	source := &MockSource{items: []types.SourceItem{bulbItem()}}
	engine := testEngine(source, store, &MockGenerator{shouldError: true})

	stored, err := engine.Ingest(context.Background(), "Smart Bulb X")
	if err != nil {
		t.Fatalf("Generation failure must not abort ingest: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("Expected the record to be persisted, got %d", len(stored))
	}

	want := "Currently unable to generate text: generation unavailable"
	if stored[0].Threats != want {
		t.Errorf("Expected placeholder narrative, got %q", stored[0].Threats)
	}
	if stored[0].Impact != want || stored[0].Recommendations != want || stored[0].AffectedSystems != want {
		t.Error("All four narrative fields must carry the placeholder")
	}
}

func TestIngestSkipsItemWithoutDescriptions(t *testing.T) {
	item := bulbItem()
	item.Descriptions = nil

	store := newMockStore("Smart Bulb X")
	source := &MockSource{items: []types.SourceItem{item}}
	gen := &MockGenerator{}
	engine := testEngine(source, store, gen)

	stored, err := engine.Ingest(context.Background(), "Smart Bulb X")
	if err != nil {
		t.Fatalf("A malformed item must not abort ingest: %v", err)
	}
	if len(stored) != 0 {
		t.Errorf("Expected no stored vulnerabilities, got %d", len(stored))
	}
	if len(gen.calls) != 0 {
		t.Error("Skipped items must not be enriched")
	}
}

func TestIngestEmptySourceResult(t *testing.T) {
	store := newMockStore("Smart Bulb X")
	source := &MockSource{}
	engine := testEngine(source, store, &MockGenerator{})

	stored, err := engine.Ingest(context.Background(), "Smart Bulb X")
	if err != nil {
		t.Fatalf("Empty result must not be an error: %v", err)
	}
	if len(stored) != 0 {
		t.Errorf("Expected an empty set, got %d", len(stored))
	}
}

func TestIngestProcessesBothSchemaBlocks(t *testing.T) {
	item := bulbItem()
	item.Metrics.CvssMetricV2 = []types.RawMetric{{
		CvssData: types.CvssData{
			Version:      "2.0",
			AccessVector: "NETWORK",
			BaseScore:    5.0,
		},
		BaseSeverity: "MEDIUM",
	}}

	store := newMockStore("Smart Bulb X")
	source := &MockSource{items: []types.SourceItem{item}}
	engine := testEngine(source, store, &MockGenerator{})

	stored, err := engine.Ingest(context.Background(), "Smart Bulb X")
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 1 {
		t.Fatalf("Expected 1 stored vulnerability, got %d", len(stored))
	}

	metricRecords := stored[0].Metrics
	if len(metricRecords) != 2 {
		t.Fatalf("Expected 2 canonical metrics, got %d", len(metricRecords))
	}
	// v3 metrics come before v2 metrics
	if !strings.HasPrefix(metricRecords[0].SchemaVersion, "3") {
		t.Errorf("Expected the v3 metric first, got %s", metricRecords[0].SchemaVersion)
	}
	if !strings.HasPrefix(metricRecords[1].SchemaVersion, "2") {
		t.Errorf("Expected the v2 metric second, got %s", metricRecords[1].SchemaVersion)
	}
	if metricRecords[1].AttackVector != "NETWORK" {
		t.Errorf("v2 accessVector translation missing, got %s", metricRecords[1].AttackVector)
	}
	if metricRecords[1].BaseSeverity != "MEDIUM" {
		t.Errorf("v2 wrapper severity missing, got %s", metricRecords[1].BaseSeverity)
	}
}

func TestIngestExistsCheckFailureIsFatal(t *testing.T) {
	store := newMockStore("Smart Bulb X")
	store.failExists = true
	source := &MockSource{items: []types.SourceItem{bulbItem()}}
	gen := &MockGenerator{}
	engine := testEngine(source, store, gen)

	_, err := engine.Ingest(context.Background(), "Smart Bulb X")
	if err == nil {
		t.Fatal("Expected error when the dedup check fails")
	}
	if len(gen.calls) != 0 {
		t.Error("No enrichment must happen when the dedup check fails")
	}
}

func TestIngestPersistenceFailureIsFatal(t *testing.T) {
	store := newMockStore("Smart Bulb X")
	store.failSave = true
	source := &MockSource{items: []types.SourceItem{bulbItem()}}
	engine := testEngine(source, store, &MockGenerator{})

	_, err := engine.Ingest(context.Background(), "Smart Bulb X")
	if err == nil {
		t.Fatal("Expected error when the bulk save fails")
	}
	if !strings.Contains(err.Error(), "failed to save vulnerabilities") {
		t.Errorf("Expected a wrapped save error, got %v", err)
	}
}

func TestIngestCachesSourceQueries(t *testing.T) {
	store := newMockStore("Smart Bulb X")
	source := &MockSource{items: []types.SourceItem{bulbItem()}}
	engine := testEngine(source, store, &MockGenerator{})

	if _, err := engine.Ingest(context.Background(), "Smart Bulb X"); err != nil {
		t.Fatal(err)
	}
	if _, err := engine.Ingest(context.Background(), "Smart Bulb X"); err != nil {
		t.Fatal(err)
	}

	if source.searchCalls != 1 {
		t.Errorf("Expected the second run to hit the cache, got %d source queries", source.searchCalls)
	}
}
