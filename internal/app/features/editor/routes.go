// internal/app/features/editor/routes.go
package editor

import "github.com/go-chi/chi/v5"

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/{id}", h.ServeEditor)
	r.Post("/{id}/save", h.HandleSave)
	r.Post("/{id}/sections", h.HandleAddSection)
	r.Post("/{id}/projects", h.HandleAddProject)
	r.Post("/{id}/rename", h.HandleRename)
	r.Post("/{id}/slug", h.HandleSlug)
	r.Post("/{id}/images", h.HandleUpload)
	return r
}
