// internal/app/features/admin/routes.go
package admin

import "github.com/go-chi/chi/v5"

// Routes returns the admin subrouter. The caller mounts it behind the admin
// role requirement; nothing here re-checks the role.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/users", h.ServeUserList)
	r.Get("/users/{id}", h.ServeUserDetail)
	r.Post("/users/{id}/tier", h.HandleSetTier)
	r.Post("/users/{id}/enable", h.HandleEnable)
	r.Post("/users/{id}/disable", h.HandleDisable)
	r.Post("/users/{id}/schedules", h.HandleCreateSchedule)
	r.Post("/schedules/{scheduleID}/execute", h.HandleExecuteSchedule)
	r.Post("/schedules/{scheduleID}/cancel", h.HandleCancelSchedule)
	return r
}
