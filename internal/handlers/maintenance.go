package handlers

import (
	"errors"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/upkeeply/maintenance-tracker/internal/db"
	"github.com/upkeeply/maintenance-tracker/internal/maintenance"
	"github.com/upkeeply/maintenance-tracker/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaintenanceHandler handles maintenance record requests. Updates that flip
// a record's status to completed go through the completion service so the
// inventory deduction and successor scheduling run exactly once.
type MaintenanceHandler struct {
	records db.MaintenanceCollection
	service *maintenance.Service
	logger  *log.Logger
}

// NewMaintenanceHandler creates a maintenance handler.
func NewMaintenanceHandler(records db.MaintenanceCollection, service *maintenance.Service, logger *log.Logger) *MaintenanceHandler {
	return &MaintenanceHandler{records: records, service: service, logger: logger}
}

// Create handles POST /api/maintenance.
func (h *MaintenanceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var rec models.MaintenanceRecord
	if err := decodeJSON(r, &rec); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if rec.Title == "" {
		writeError(w, http.StatusBadRequest, "Title is required")
		return
	}
	if rec.Status == "" {
		rec.Status = models.StatusPending
	}
	if !models.IsValidStatus(rec.Status) {
		writeError(w, http.StatusBadRequest, "Invalid status")
		return
	}
	if rec.Priority == "" {
		rec.Priority = models.PriorityMedium
	}
	if rec.IsRecurring {
		if !models.IsValidPattern(rec.RecurrencePattern) || rec.RecurrencePattern == models.RecurrenceNone {
			writeError(w, http.StatusBadRequest, "Invalid recurrence pattern")
			return
		}
		if rec.RecurrenceInterval <= 0 {
			rec.RecurrenceInterval = 1
		}
	}
	if rec.DueDate.IsZero() && !rec.ScheduledDate.IsZero() {
		rec.DueDate = rec.ScheduledDate.Add(7 * 24 * time.Hour)
	}
	rec.ID = primitive.NilObjectID
	rec.CompletedDate = nil
	rec.ScheduledDay = ""

	id, err := h.records.InsertMaintenance(r.Context(), rec)
	if err != nil {
		h.logger.WithError(err).Error("failed to create maintenance record")
		writeError(w, http.StatusInternalServerError, "Failed to create maintenance record")
		return
	}
	rec.ID = id
	writeJSON(w, http.StatusCreated, rec)
}

// List handles GET /api/maintenance with optional status, machine_id and
// template filters.
func (h *MaintenanceHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = models.MaintenanceStatus(status)
	}
	if machineID := r.URL.Query().Get("machine_id"); machineID != "" {
		objectID, err := primitive.ObjectIDFromHex(machineID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid machine_id")
			return
		}
		filter["machine_id"] = objectID
	}
	if tpl := r.URL.Query().Get("template"); tpl != "" {
		filter["is_template"] = tpl == "true"
	}

	recs, err := h.records.FindMaintenance(r.Context(), filter)
	if err != nil {
		h.logger.WithError(err).Error("failed to list maintenance records")
		writeError(w, http.StatusInternalServerError, "Failed to list maintenance records")
		return
	}
	if recs == nil {
		recs = []models.MaintenanceRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}

// Get handles GET /api/maintenance/{id}.
func (h *MaintenanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.records.FindMaintenanceByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Maintenance record not found")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid maintenance ID")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Update handles PATCH /api/maintenance/{id}. The response carries the
// updated record plus any completion side effects (inventory deduction
// results, successor occurrence) inline.
func (h *MaintenanceHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch maintenance.UpdatePatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	result, err := h.service.ApplyUpdate(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrNotFound):
			writeError(w, http.StatusNotFound, "Maintenance record not found")
		case errors.Is(err, maintenance.ErrInvalidTransition):
			writeError(w, http.StatusConflict, err.Error())
		default:
			h.logger.WithError(err).Error("failed to update maintenance record")
			writeError(w, http.StatusInternalServerError, "Failed to update maintenance record")
		}
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Delete handles DELETE /api/maintenance/{id}. Deleting a template does not
// cascade to occurrences spawned from it.
func (h *MaintenanceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.records.DeleteMaintenance(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Maintenance record not found")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid maintenance ID")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Maintenance record deleted"})
}
