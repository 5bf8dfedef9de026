// ABOUTME: HTTP handlers for device management endpoints.
// ABOUTME: Create, list, and delete devices with JSON request validation.

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/openhomesec/VulnTrack/internal/models"
	"github.com/openhomesec/VulnTrack/internal/store"

	"github.com/sirupsen/logrus"
)

// DeviceStore is the persistence surface for device management.
type DeviceStore interface {
	CreateDevice(name string, categoryID uint) (models.Device, error)
	ListDevices() ([]models.Device, error)
	DeleteDevice(id uint) error
}

// DevicesHandler serves the /devices endpoints.
type DevicesHandler struct {
	store  DeviceStore
	logger *logrus.Logger
}

func NewDevicesHandler(store DeviceStore, logger *logrus.Logger) *DevicesHandler {
	return &DevicesHandler{
		store:  store,
		logger: logger,
	}
}

type createDeviceRequest struct {
	Name       string `json:"name"`
	CategoryID uint   `json:"categoryId"`
}

func (h *DevicesHandler) Create(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.WithField("endpoint", "/devices")

	var req createDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	if req.CategoryID < 1 {
		http.Error(w, "categoryId must be a positive integer", http.StatusBadRequest)
		return
	}

	device, err := h.store.CreateDevice(req.Name, req.CategoryID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, fmt.Sprintf("Category with ID %d not found", req.CategoryID), http.StatusNotFound)
			return
		}
		logger.WithError(err).Error("Failed to create device")
		http.Error(w, "Failed to create device", http.StatusInternalServerError)
		return
	}

	logger.WithFields(logrus.Fields{
		"device_id": device.ID,
		"name":      device.Name,
	}).Info("Created device")

	writeJSON(w, http.StatusCreated, device, logger)
}

func (h *DevicesHandler) List(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.WithField("endpoint", "/devices")

	devices, err := h.store.ListDevices()
	if err != nil {
		logger.WithError(err).Error("Failed to list devices")
		http.Error(w, "Failed to list devices", http.StatusInternalServerError)
		return
	}
	if devices == nil {
		devices = []models.Device{}
	}

	writeJSON(w, http.StatusOK, devices, logger)
}

func (h *DevicesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.WithField("endpoint", "/devices")

	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		http.Error(w, "Invalid device ID", http.StatusBadRequest)
		return
	}

	if err := h.store.DeleteDevice(uint(id)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, fmt.Sprintf("Device with ID %d not found", id), http.StatusNotFound)
			return
		}
		logger.WithError(err).Error("Failed to delete device")
		http.Error(w, "Failed to delete device", http.StatusInternalServerError)
		return
	}

	logger.WithField("device_id", id).Info("Deleted device")
	w.WriteHeader(http.StatusNoContent)
}
