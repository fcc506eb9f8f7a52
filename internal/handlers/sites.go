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

// SiteHandler handles site requests.
type SiteHandler struct {
	sites  db.SiteCollection
	logger *log.Logger
}

// NewSiteHandler creates a site handler.
func NewSiteHandler(sites db.SiteCollection, logger *log.Logger) *SiteHandler {
	return &SiteHandler{sites: sites, logger: logger}
}

// Create handles POST /api/sites.
func (h *SiteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var site models.Site
	if err := decodeJSON(r, &site); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if site.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}
	site.ID = primitive.NilObjectID

	id, err := h.sites.InsertSite(r.Context(), site)
	if err != nil {
		h.logger.WithError(err).Error("failed to create site")
		writeError(w, http.StatusInternalServerError, "Failed to create site")
		return
	}
	site.ID = id
	writeJSON(w, http.StatusCreated, site)
}

// List handles GET /api/sites.
func (h *SiteHandler) List(w http.ResponseWriter, r *http.Request) {
	sites, err := h.sites.FindSites(r.Context(), bson.M{})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sites")
		return
	}
	if sites == nil {
		sites = []models.Site{}
	}
	writeJSON(w, http.StatusOK, sites)
}

// Get handles GET /api/sites/{id}.
func (h *SiteHandler) Get(w http.ResponseWriter, r *http.Request) {
	site, err := h.sites.FindSiteByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Site not found")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid site ID")
		return
	}
	writeJSON(w, http.StatusOK, site)
}

// Update handles PUT /api/sites/{id}.
func (h *SiteHandler) Update(w http.ResponseWriter, r *http.Request) {
	var site models.Site
	if err := decodeJSON(r, &site); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := h.sites.UpdateSite(r.Context(), r.PathValue("id"), site); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Site not found")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid site ID")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Site updated"})
}

// Delete handles DELETE /api/sites/{id}.
func (h *SiteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.sites.DeleteSite(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Site not found")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid site ID")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Site deleted"})
}
