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

// MachineHandler handles machine requests.
type MachineHandler struct {
	machines db.MachineCollection
	logger   *log.Logger
}

// NewMachineHandler creates a machine handler.
func NewMachineHandler(machines db.MachineCollection, logger *log.Logger) *MachineHandler {
	return &MachineHandler{machines: machines, logger: logger}
}

// Create handles POST /api/machines.
func (h *MachineHandler) Create(w http.ResponseWriter, r *http.Request) {
	var machine models.Machine
	if err := decodeJSON(r, &machine); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if machine.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}
	if machine.Status == "" {
		machine.Status = "operational"
	}
	machine.ID = primitive.NilObjectID

	id, err := h.machines.InsertMachine(r.Context(), machine)
	if err != nil {
		h.logger.WithError(err).Error("failed to create machine")
		writeError(w, http.StatusInternalServerError, "Failed to create machine")
		return
	}
	machine.ID = id
	writeJSON(w, http.StatusCreated, machine)
}

// List handles GET /api/machines with optional site_id and status filters.
func (h *MachineHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if siteID := r.URL.Query().Get("site_id"); siteID != "" {
		objectID, err := primitive.ObjectIDFromHex(siteID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid site_id")
			return
		}
		filter["site_id"] = objectID
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}

	machines, err := h.machines.FindMachines(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list machines")
		return
	}
	if machines == nil {
		machines = []models.Machine{}
	}
	writeJSON(w, http.StatusOK, machines)
}

// Get handles GET /api/machines/{id}.
func (h *MachineHandler) Get(w http.ResponseWriter, r *http.Request) {
	machine, err := h.machines.FindMachineByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Machine not found")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid machine ID")
		return
	}
	writeJSON(w, http.StatusOK, machine)
}

// Update handles PUT /api/machines/{id}.
func (h *MachineHandler) Update(w http.ResponseWriter, r *http.Request) {
	var machine models.Machine
	if err := decodeJSON(r, &machine); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := h.machines.UpdateMachine(r.Context(), r.PathValue("id"), machine); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Machine not found")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid machine ID")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Machine updated"})
}

// Delete handles DELETE /api/machines/{id}.
func (h *MachineHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.machines.DeleteMachine(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Machine not found")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid machine ID")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Machine deleted"})
}
