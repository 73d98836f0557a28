// internal/app/features/dashboard/routes.go
package dashboard

import "github.com/go-chi/chi/v5"

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeDashboard)
	r.Post("/portfolios", h.HandleCreate)
	r.Post("/portfolios/{id}/publish", h.HandlePublish)
	r.Post("/portfolios/{id}/unpublish", h.HandleUnpublish)
	r.Post("/portfolios/{id}/delete", h.HandleDelete)
	return r
}
