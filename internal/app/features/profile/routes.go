// internal/app/features/profile/routes.go
package profile

import (
	"github.com/go-chi/chi/v5"

	"github.com/meskelsoft/partyreg/internal/app/system/auth"
)

// Routes mounts the self-service screens for any signed-in user.
// Typically: r.Mount("/profile", profile.Routes(handler, sessionMgr))
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.ServeProfile)
		pr.Get("/edit", h.ServeEdit)
		pr.Post("/edit", h.HandleEdit)
		pr.Get("/password", h.ServePassword)
		pr.Post("/password", h.HandlePassword)
	})

	return r
}
