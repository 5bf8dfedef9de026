// ABOUTME: HTTP handler for the vulnerability ingestion endpoint.
// ABOUTME: Validates the keyword parameter, runs ingestion, and maps errors to status codes.

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openhomesec/VulnTrack/internal/engine"
	"github.com/openhomesec/VulnTrack/internal/models"
	"github.com/openhomesec/VulnTrack/internal/store"

	"github.com/sirupsen/logrus"
)

// Ingestor runs the ingestion pipeline for one device.
type Ingestor interface {
	Ingest(ctx context.Context, deviceName string) ([]models.Vulnerability, error)
}

// VulnerabilitiesHandler serves GET /vulnerabilities.
type VulnerabilitiesHandler struct {
	ingestor Ingestor
	logger   *logrus.Logger
}

func NewVulnerabilitiesHandler(ingestor Ingestor, logger *logrus.Logger) *VulnerabilitiesHandler {
	return &VulnerabilitiesHandler{
		ingestor: ingestor,
		logger:   logger,
	}
}

func (h *VulnerabilitiesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.WithField("endpoint", "/vulnerabilities")

	keyword := strings.TrimSpace(r.URL.Query().Get("keywordSearch"))
	if keyword == "" {
		http.Error(w, "keywordSearch query parameter is required", http.StatusBadRequest)
		return
	}
	if len(keyword) > 200 {
		http.Error(w, "keywordSearch too long. Maximum allowed is 200 characters", http.StatusBadRequest)
		return
	}

	vulns, err := h.ingestor.Ingest(r.Context(), keyword)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, fmt.Sprintf("No device found with the name: %s", keyword), http.StatusNotFound)
			return
		}
		if errors.Is(err, engine.ErrSourceUnavailable) {
			logger.WithError(err).WithField("device", keyword).Error("Vulnerability source unavailable")
			http.Error(w, "Failed to fetch vulnerabilities from the upstream source", http.StatusBadGateway)
			return
		}
		logger.WithError(err).WithField("device", keyword).Error("Ingestion failed")
		http.Error(w, "Failed to fetch vulnerabilities", http.StatusInternalServerError)
		return
	}

	if vulns == nil {
		vulns = []models.Vulnerability{}
	}

	logger.WithFields(logrus.Fields{
		"device":          keyword,
		"vulnerabilities": len(vulns),
	}).Info("Served vulnerabilities response")

	writeJSON(w, http.StatusOK, vulns, logger)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}, logger *logrus.Entry) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.WithError(err).Error("Failed to encode JSON response")
	}
}
