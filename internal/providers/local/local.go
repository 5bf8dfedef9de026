// ABOUTME: Local file-based vulnerability source for development and testing.
// ABOUTME: Reads an NVD-format JSON document instead of calling the live API.

package local

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/openhomesec/VulnTrack/internal/types"

	"github.com/sirupsen/logrus"
)

// Source implements the vulnerability source interface on top of a JSON file
// holding an NVD-format response document.
type Source struct {
	sourceFile string
	logger     *logrus.Logger
}

// NewSource creates a file-backed vulnerability source.
func NewSource(sourceFile string, logger *logrus.Logger) *Source {
	return &Source{
		sourceFile: sourceFile,
		logger:     logger,
	}
}

// Name returns the provider name.
func (s *Source) Name() string {
	return "local"
}

type document struct {
	Vulnerabilities []struct {
		Cve types.SourceItem `json:"cve"`
	} `json:"vulnerabilities"`
}

// Search reads the document and returns the items whose description mentions
// the keyword, mirroring the live API's keyword filter.
func (s *Source) Search(ctx context.Context, keyword string) ([]types.SourceItem, error) {
	logger := s.logger.WithField("operation", "search_local")

	data, err := os.ReadFile(s.sourceFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read source file '%s': %w", s.sourceFile, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse source file JSON: %w", err)
	}

	needle := strings.ToLower(keyword)
	var items []types.SourceItem
	for _, v := range doc.Vulnerabilities {
		if matchesKeyword(v.Cve, needle) {
			items = append(items, v.Cve)
		}
	}

	logger.WithFields(logrus.Fields{
		"keyword":     keyword,
		"total_items": len(doc.Vulnerabilities),
		"matched":     len(items),
	}).Info("Local source search completed")

	return items, nil
}

func matchesKeyword(item types.SourceItem, needle string) bool {
	if needle == "" {
		return true
	}
	for _, d := range item.Descriptions {
		if strings.Contains(strings.ToLower(d.Value), needle) {
			return true
		}
	}
	return false
}
