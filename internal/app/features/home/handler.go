// internal/app/features/home/handler.go
package home

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/meskelsoft/partyreg/internal/app/system/auth"
	"github.com/meskelsoft/partyreg/internal/app/system/viewdata"
)

// Handler holds dependencies needed to serve the landing page.
type Handler struct {
	DB  *mongo.Database
	Log *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:  db,
		Log: logger,
	}
}

// ServeRoot handles GET /: a public landing page. Signed-in users are
// sent straight to their usual screen.
func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	if u, ok := auth.CurrentUser(r); ok {
		switch u.Role {
		case "admin", "staff", "coordinator":
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		default:
			http.Redirect(w, r, "/profile", http.StatusSeeOther)
		}
		return
	}

	data := struct {
		viewdata.BaseVM
	}{
		BaseVM: viewdata.NewBaseVM(r, "እንኳን ደህና መጡ", "/"),
	}
	templates.Render(w, r, "home", data)
}
