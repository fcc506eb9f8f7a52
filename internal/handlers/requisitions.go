package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/upkeeply/maintenance-tracker/internal/db"
	"github.com/upkeeply/maintenance-tracker/internal/middleware"
	"github.com/upkeeply/maintenance-tracker/internal/models"
	"github.com/upkeeply/maintenance-tracker/internal/notify"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RequisitionHandler handles purchase requisition requests.
type RequisitionHandler struct {
	requisitions db.RequisitionCollection
	counters     db.CounterCollection
	notifier     notify.UserNotifier
	logger       *log.Logger
}

// NewRequisitionHandler creates a requisition handler.
func NewRequisitionHandler(requisitions db.RequisitionCollection, counters db.CounterCollection, notifier notify.UserNotifier, logger *log.Logger) *RequisitionHandler {
	return &RequisitionHandler{
		requisitions: requisitions,
		counters:     counters,
		notifier:     notifier,
		logger:       logger,
	}
}

// Create handles POST /api/requisitions. The requisition number comes from
// the counter collection so concurrent creates never collide.
func (h *RequisitionHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	var req models.Requisition
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "Title is required")
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "At least one item is required")
		return
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			writeError(w, http.StatusBadRequest, "Item quantities must be positive")
			return
		}
	}

	requestedBy, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid user ID in token")
		return
	}

	seq, err := h.counters.NextSequence(r.Context(), "requisitions")
	if err != nil {
		h.logger.WithError(err).Error("failed to allocate requisition number")
		writeError(w, http.StatusInternalServerError, "Failed to create requisition")
		return
	}

	req.ID = primitive.NilObjectID
	req.Number = fmt.Sprintf("REQ-%d-%06d", time.Now().Year(), seq)
	req.Status = models.RequisitionPending
	req.RequestedBy = requestedBy

	id, err := h.requisitions.InsertRequisition(r.Context(), req)
	if err != nil {
		h.logger.WithError(err).Error("failed to create requisition")
		writeError(w, http.StatusInternalServerError, "Failed to create requisition")
		return
	}
	req.ID = id
	writeJSON(w, http.StatusCreated, req)
}

// List handles GET /api/requisitions with optional status and mine filters.
func (h *RequisitionHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = models.RequisitionStatus(status)
	}
	if r.URL.Query().Get("mine") == "true" {
		claims, ok := middleware.GetUserFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "User context not found")
			return
		}
		requestedBy, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid user ID in token")
			return
		}
		filter["requested_by"] = requestedBy
	}

	reqs, err := h.requisitions.FindRequisitions(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list requisitions")
		return
	}
	if reqs == nil {
		reqs = []models.Requisition{}
	}
	writeJSON(w, http.StatusOK, reqs)
}

// Get handles GET /api/requisitions/{id}.
func (h *RequisitionHandler) Get(w http.ResponseWriter, r *http.Request) {
	req, err := h.requisitions.FindRequisitionByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Requisition not found")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid requisition ID")
		return
	}
	writeJSON(w, http.StatusOK, req)
}

type requisitionStatusRequest struct {
	Status models.RequisitionStatus `json:"status"`
}

// UpdateStatus handles POST /api/requisitions/{id}/status. The requester is
// notified of the decision; notification failure does not fail the update.
func (h *RequisitionHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req requisitionStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	switch req.Status {
	case models.RequisitionPending, models.RequisitionApproved,
		models.RequisitionRejected, models.RequisitionFulfilled:
	default:
		writeError(w, http.StatusBadRequest, "Invalid status")
		return
	}

	id := r.PathValue("id")
	requisition, err := h.requisitions.FindRequisitionByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Requisition not found")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid requisition ID")
		return
	}

	if err := h.requisitions.UpdateRequisitionStatus(r.Context(), id, req.Status); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Requisition not found")
			return
		}
		h.logger.WithError(err).Error("failed to update requisition status")
		writeError(w, http.StatusInternalServerError, "Failed to update requisition status")
		return
	}

	relatedID := requisition.ID
	if err := h.notifier.NotifyUsers(r.Context(), []primitive.ObjectID{requisition.RequestedBy}, notify.Input{
		Title:        fmt.Sprintf("Requisition %s %s", requisition.Number, req.Status),
		Message:      fmt.Sprintf("Your requisition %q is now %s.", requisition.Title, req.Status),
		Type:         models.NotificationRequisition,
		Priority:     models.PriorityMedium,
		RelatedModel: "requisition",
		RelatedID:    &relatedID,
		ActionURL:    fmt.Sprintf("/requisitions/%s", requisition.ID.Hex()),
	}); err != nil {
		h.logger.WithError(err).Warn("failed to notify requisition requester")
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Requisition status updated"})
}
