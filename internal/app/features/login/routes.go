// internal/app/features/login/routes.go
package login

import "github.com/go-chi/chi/v5"

// MountRoutes mounts the sign-in and sign-up routes at the router root.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/login", h.ServeLogin)
	r.Post("/login", h.HandleLoginPost)
	r.Get("/signup", h.ServeSignup)
	r.Post("/signup", h.HandleSignupPost)
}
