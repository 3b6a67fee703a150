// internal/app/features/members/routes.go
package members

import (
	"github.com/go-chi/chi/v5"

	"github.com/meskelsoft/partyreg/internal/app/system/auth"
)

// Routes mounts all member-management routes.
// Typically: r.Mount("/members", members.Routes(handler, sessionMgr))
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole("admin", "staff", "coordinator"))

		pr.Get("/", h.ServeList)
		pr.Get("/export.csv", h.ServeExportCSV)

		pr.Get("/new", h.ServeNew)
		pr.Post("/", h.HandleCreate)

		pr.Get("/{id}", h.ServeView)
		pr.Get("/{id}/card", h.ServeCard)
		pr.Get("/{id}/edit", h.ServeEdit)
		pr.Post("/{id}/edit", h.HandleEdit)
		pr.Post("/{id}/deactivate", h.HandleDeactivate)
		pr.Post("/{id}/reactivate", h.HandleReactivate)
		pr.Post("/{id}/provision", h.HandleProvision)
		pr.Post("/{id}/resend", h.HandleResend)
	})

	return r
}
