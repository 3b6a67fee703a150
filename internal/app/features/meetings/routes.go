// internal/app/features/meetings/routes.go
package meetings

import (
	"github.com/go-chi/chi/v5"

	"github.com/meskelsoft/partyreg/internal/app/system/auth"
)

// Routes mounts the meeting screens.
// Typically: r.Mount("/meetings", meetings.Routes(handler, sessionMgr))
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole("admin", "staff", "coordinator"))

		pr.Get("/", h.ServeList)
		pr.Get("/new", h.ServeNew)
		pr.Post("/", h.HandleCreate)

		pr.Get("/{id}", h.ServeView)
		pr.Get("/{id}/edit", h.ServeEdit)
		pr.Post("/{id}/edit", h.HandleEdit)
		pr.Post("/{id}/delete", h.HandleDelete)

		pr.Post("/{id}/attend", h.HandleMark)
		pr.Post("/{id}/unattend", h.HandleUnmark)
	})

	return r
}
