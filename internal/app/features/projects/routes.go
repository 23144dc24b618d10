// internal/app/features/projects/routes.go
package projects

import "github.com/go-chi/chi/v5"

// MountRoutes mounts all project routes on the given router.
// All routes require a signed-in session; the caller applies the gate.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/new", h.ShowNew)
	r.Post("/new", h.Create)
	r.Get("/mine", h.Mine)
	r.Get("/{id}", h.Show)
	r.Post("/{id}", h.Update)
	r.Get("/{id}/edit", h.ShowEdit)
	r.Post("/{id}/close", h.Close)
	r.Post("/{id}/delete", h.Delete)
	r.Post("/{id}/reactivate", h.Reactivate)
}
