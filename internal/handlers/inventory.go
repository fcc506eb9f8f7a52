package handlers

import (
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/upkeeply/maintenance-tracker/internal/db"
	"github.com/upkeeply/maintenance-tracker/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InventoryHandler handles inventory item requests.
type InventoryHandler struct {
	items  db.InventoryCollection
	logger *log.Logger
}

// NewInventoryHandler creates an inventory handler.
func NewInventoryHandler(items db.InventoryCollection, logger *log.Logger) *InventoryHandler {
	return &InventoryHandler{items: items, logger: logger}
}

// Create handles POST /api/inventory.
func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var item models.InventoryItem
	if err := decodeJSON(r, &item); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if item.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}
	if item.CurrentStock < 0 || item.MinStock < 0 {
		writeError(w, http.StatusBadRequest, "Stock values cannot be negative")
		return
	}
	item.ID = primitive.NilObjectID

	id, err := h.items.InsertItem(r.Context(), item)
	if err != nil {
		h.logger.WithError(err).Error("failed to create inventory item")
		writeError(w, http.StatusInternalServerError, "Failed to create inventory item")
		return
	}
	item.ID = id
	writeJSON(w, http.StatusCreated, item)
}

// List handles GET /api/inventory with optional category and low_stock filters.
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("low_stock") == "true" {
		items, err := h.items.FindLowStock(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to list inventory items")
			return
		}
		if items == nil {
			items = []models.InventoryItem{}
		}
		writeJSON(w, http.StatusOK, items)
		return
	}

	filter := bson.M{}
	if category := r.URL.Query().Get("category"); category != "" {
		filter["category"] = category
	}
	items, err := h.items.FindItems(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list inventory items")
		return
	}
	if items == nil {
		items = []models.InventoryItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

// Get handles GET /api/inventory/{id}.
func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.items.FindItemByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Inventory item not found")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid item ID")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Update handles PUT /api/inventory/{id}.
func (h *InventoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var item models.InventoryItem
	if err := decodeJSON(r, &item); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if item.CurrentStock < 0 || item.MinStock < 0 {
		writeError(w, http.StatusBadRequest, "Stock values cannot be negative")
		return
	}

	if err := h.items.UpdateItem(r.Context(), r.PathValue("id"), item); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Inventory item not found")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid item ID")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Inventory item updated"})
}

// Delete handles DELETE /api/inventory/{id}.
func (h *InventoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.items.DeleteItem(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Inventory item not found")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid item ID")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Inventory item deleted"})
}

type adjustStockRequest struct {
	Delta int `json:"delta"`
}

// AdjustStock handles POST /api/inventory/{id}/adjust for manual stock
// corrections. Negative deltas are refused when they would take stock below
// zero.
func (h *InventoryHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	var req adjustStockRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Delta == 0 {
		writeError(w, http.StatusBadRequest, "Delta must be non-zero")
		return
	}

	objectID, err := primitive.ObjectIDFromHex(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid item ID")
		return
	}

	item, err := h.items.AdjustStock(r.Context(), objectID, req.Delta)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrNotFound):
			writeError(w, http.StatusNotFound, "Inventory item not found")
		case errors.Is(err, db.ErrInsufficientStock):
			writeError(w, http.StatusConflict, "Adjustment would take stock below zero")
		default:
			h.logger.WithError(err).Error("failed to adjust stock")
			writeError(w, http.StatusInternalServerError, "Failed to adjust stock")
		}
		return
	}
	writeJSON(w, http.StatusOK, item)
}
