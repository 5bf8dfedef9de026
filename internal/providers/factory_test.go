// ABOUTME: Tests for provider factory functionality.
// ABOUTME: Tests vulnerability source and generator selection for different configurations.

package providers

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func createTestSourceFile(t *testing.T) string {
	t.Helper()

	doc := `{
		"resultsPerPage": 1,
		"startIndex": 0,
		"totalResults": 1,
		"vulnerabilities": [
			{
				"cve": {
					"id": "CVE-2024-0001",
					"vulnStatus": "Analyzed",
					"descriptions": [
						{"lang": "en", "value": "A test flaw in a smart bulb"}
					],
					"metrics": {},
					"references": []
				}
			}
		]
	}`

	path := filepath.Join(t.TempDir(), "cves.json")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("Failed to write test source file: %v", err)
	}
	return path
}

func TestCreateVulnerabilitySource(t *testing.T) {
	logger := testLogger()

	tests := []struct {
		name       string
		config     *ProviderConfig
		expectType string
	}{
		{
			name:       "mock mode",
			config:     &ProviderConfig{MockMode: true},
			expectType: "mock-nvd",
		},
		{
			name:       "file-based source",
			config:     &ProviderConfig{SourceFile: createTestSourceFile(t)},
			expectType: "local",
		},
		{
			name:       "default NVD client",
			config:     &ProviderConfig{},
			expectType: "nvd",
		},
		{
			name:       "mock mode wins over source file",
			config:     &ProviderConfig{MockMode: true, SourceFile: "/does/not/matter.json"},
			expectType: "mock-nvd",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source, err := CreateVulnerabilitySource(tt.config, logger)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if source == nil {
				t.Fatal("Source is nil")
			}
			if source.Name() != tt.expectType {
				t.Errorf("Expected source type %s, got %s", tt.expectType, source.Name())
			}
		})
	}
}

func TestCreateVulnerabilitySourceMissingFile(t *testing.T) {
	config := &ProviderConfig{SourceFile: "/nonexistent/cves.json"}

	_, err := CreateVulnerabilitySource(config, testLogger())
	if err == nil {
		t.Fatal("Expected error for a missing source file")
	}
}

func TestCreateVulnerabilitySourceFileSearch(t *testing.T) {
	config := &ProviderConfig{SourceFile: createTestSourceFile(t)}
	source, err := CreateVulnerabilitySource(config, testLogger())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	items, err := source.Search(ctx, "smart bulb")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(items) != 1 || items[0].ID != "CVE-2024-0001" {
		t.Errorf("Expected the matching test item, got %+v", items)
	}
}

func TestCreateGenerator(t *testing.T) {
	logger := testLogger()

	tests := []struct {
		name       string
		config     *ProviderConfig
		expectType string
	}{
		{
			name:       "mock mode",
			config:     &ProviderConfig{MockMode: true},
			expectType: "mock-generator",
		},
		{
			name:       "openai with key",
			config:     &ProviderConfig{OpenAIAPIKey: "test-key"},
			expectType: "openai",
		},
		{
			name:       "openai without key still constructed",
			config:     &ProviderConfig{},
			expectType: "openai",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			generator := CreateGenerator(tt.config, logger)
			if generator == nil {
				t.Fatal("Generator is nil")
			}
			if generator.Name() != tt.expectType {
				t.Errorf("Expected generator type %s, got %s", tt.expectType, generator.Name())
			}
		})
	}
}
