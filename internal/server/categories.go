// ABOUTME: HTTP handlers for category management endpoints.
// ABOUTME: Create, list, and delete categories with JSON request validation.

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

// CategoryStore is the persistence surface for category management.
type CategoryStore interface {
	CreateCategory(name string) (models.Category, error)
	ListCategories() ([]models.Category, error)
	DeleteCategory(id uint) error
}

// CategoriesHandler serves the /categories endpoints.
type CategoriesHandler struct {
	store  CategoryStore
	logger *logrus.Logger
}

func NewCategoriesHandler(store CategoryStore, logger *logrus.Logger) *CategoriesHandler {
	return &CategoriesHandler{
		store:  store,
		logger: logger,
	}
}

type createCategoryRequest struct {
	Name string `json:"name"`
}

func (h *CategoriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.WithField("endpoint", "/categories")

	var req createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	category, err := h.store.CreateCategory(req.Name)
	if err != nil {
		logger.WithError(err).Error("Failed to create category")
		http.Error(w, "Failed to create category", http.StatusInternalServerError)
		return
	}

	logger.WithFields(logrus.Fields{
		"category_id": category.ID,
		"name":        category.Name,
	}).Info("Created category")

	writeJSON(w, http.StatusCreated, category, logger)
}

func (h *CategoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.WithField("endpoint", "/categories")

	categories, err := h.store.ListCategories()
	if err != nil {
		logger.WithError(err).Error("Failed to list categories")
		http.Error(w, "Failed to list categories", http.StatusInternalServerError)
		return
	}
	if categories == nil {
		categories = []models.Category{}
	}

	writeJSON(w, http.StatusOK, categories, logger)
}

func (h *CategoriesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.WithField("endpoint", "/categories")

	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		http.Error(w, "Invalid category ID", http.StatusBadRequest)
		return
	}

	if err := h.store.DeleteCategory(uint(id)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, fmt.Sprintf("Category with ID %d not found", id), http.StatusNotFound)
			return
		}
		logger.WithError(err).Error("Failed to delete category")
		http.Error(w, "Failed to delete category", http.StatusInternalServerError)
		return
	}

	logger.WithField("category_id", id).Info("Deleted category")
	w.WriteHeader(http.StatusNoContent)
}
