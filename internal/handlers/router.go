package handlers

import (
	"net/http"

	"github.com/upkeeply/maintenance-tracker/internal/middleware"
)

// Handlers bundles the HTTP handlers the router wires up.
type Handlers struct {
	Auth          *AuthHandler
	Maintenance   *MaintenanceHandler
	Inventory     *InventoryHandler
	Machines      *MachineHandler
	Sites         *SiteHandler
	Requisitions  *RequisitionHandler
	Notifications *NotificationHandler
}

// NewRouter builds the API mux. Authentication wraps everything except the
// login, register and health endpoints; per-route permission checks sit
// inside that.
func NewRouter(h Handlers, authMW *middleware.AuthMiddleware) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("POST /api/auth/login", h.Auth.Login)
	mux.HandleFunc("POST /api/auth/register", h.Auth.Register)
	mux.HandleFunc("GET /api/auth/me", h.Auth.Me)

	perm := func(action string, handler http.HandlerFunc) http.Handler {
		return authMW.RequirePermission(action)(handler)
	}

	mux.Handle("POST /api/maintenance", perm("create_maintenance", h.Maintenance.Create))
	mux.Handle("GET /api/maintenance", perm("view_maintenance", h.Maintenance.List))
	mux.Handle("GET /api/maintenance/{id}", perm("view_maintenance", h.Maintenance.Get))
	mux.Handle("PATCH /api/maintenance/{id}", perm("update_maintenance", h.Maintenance.Update))
	mux.Handle("DELETE /api/maintenance/{id}", perm("delete_maintenance", h.Maintenance.Delete))

	mux.Handle("POST /api/inventory", perm("manage_inventory", h.Inventory.Create))
	mux.Handle("GET /api/inventory", perm("view_inventory", h.Inventory.List))
	mux.Handle("GET /api/inventory/{id}", perm("view_inventory", h.Inventory.Get))
	mux.Handle("PUT /api/inventory/{id}", perm("manage_inventory", h.Inventory.Update))
	mux.Handle("DELETE /api/inventory/{id}", perm("manage_inventory", h.Inventory.Delete))
	mux.Handle("POST /api/inventory/{id}/adjust", perm("adjust_stock", h.Inventory.AdjustStock))

	mux.Handle("POST /api/machines", perm("manage_machines", h.Machines.Create))
	mux.Handle("GET /api/machines", perm("view_machines", h.Machines.List))
	mux.Handle("GET /api/machines/{id}", perm("view_machines", h.Machines.Get))
	mux.Handle("PUT /api/machines/{id}", perm("manage_machines", h.Machines.Update))
	mux.Handle("DELETE /api/machines/{id}", perm("manage_machines", h.Machines.Delete))

	mux.Handle("POST /api/sites", perm("manage_sites", h.Sites.Create))
	mux.Handle("GET /api/sites", perm("view_sites", h.Sites.List))
	mux.Handle("GET /api/sites/{id}", perm("view_sites", h.Sites.Get))
	mux.Handle("PUT /api/sites/{id}", perm("manage_sites", h.Sites.Update))
	mux.Handle("DELETE /api/sites/{id}", perm("manage_sites", h.Sites.Delete))

	mux.Handle("POST /api/requisitions", perm("create_requisition", h.Requisitions.Create))
	mux.Handle("GET /api/requisitions", perm("view_requisitions", h.Requisitions.List))
	mux.Handle("GET /api/requisitions/{id}", perm("view_requisitions", h.Requisitions.Get))
	mux.Handle("POST /api/requisitions/{id}/status", perm("approve_requisition", h.Requisitions.UpdateStatus))

	mux.HandleFunc("GET /api/notifications", h.Notifications.List)
	mux.HandleFunc("POST /api/notifications/{id}/read", h.Notifications.MarkRead)
	mux.HandleFunc("DELETE /api/notifications/{id}", h.Notifications.Delete)

	return authMW.Authenticate(mux)
}
