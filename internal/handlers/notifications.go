package handlers

import (
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/upkeeply/maintenance-tracker/internal/db"
	"github.com/upkeeply/maintenance-tracker/internal/middleware"
	"github.com/upkeeply/maintenance-tracker/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationHandler handles a user's own notifications. Every operation is
// scoped to the authenticated user so nobody can read or delete another
// user's notifications.
type NotificationHandler struct {
	notifications db.NotificationCollection
	logger        *log.Logger
}

// NewNotificationHandler creates a notification handler.
func NewNotificationHandler(notifications db.NotificationCollection, logger *log.Logger) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, logger: logger}
}

func recipientFromContext(r *http.Request) (primitive.ObjectID, bool) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		return primitive.NilObjectID, false
	}
	recipient, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return recipient, true
}

// List handles GET /api/notifications with an optional unread filter.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	recipient, ok := recipientFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	unreadOnly := r.URL.Query().Get("unread") == "true"
	notifications, err := h.notifications.FindByRecipient(r.Context(), recipient, unreadOnly)
	if err != nil {
		h.logger.WithError(err).Error("failed to list notifications")
		writeError(w, http.StatusInternalServerError, "Failed to list notifications")
		return
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	writeJSON(w, http.StatusOK, notifications)
}

// MarkRead handles POST /api/notifications/{id}/read.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	recipient, ok := recipientFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	if err := h.notifications.MarkRead(r.Context(), r.PathValue("id"), recipient); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Notification not found")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid notification ID")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Notification marked read"})
}

// Delete handles DELETE /api/notifications/{id}.
func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	recipient, ok := recipientFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	if err := h.notifications.DeleteNotification(r.Context(), r.PathValue("id"), recipient); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Notification not found")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid notification ID")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Notification deleted"})
}
