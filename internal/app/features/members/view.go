// internal/app/features/members/view.go
package members

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	uierrors "github.com/meskelsoft/partyreg/internal/app/features/errors"
	"github.com/meskelsoft/partyreg/internal/app/system/auth"
	"github.com/meskelsoft/partyreg/internal/app/system/timeouts"
	"github.com/meskelsoft/partyreg/internal/app/system/viewdata"
	"github.com/meskelsoft/partyreg/internal/domain/models"
)

type viewData struct {
	viewdata.BaseVM

	MemberID     string
	FullName     string
	Gender       string
	BirthDate    string
	Phone        string
	Email        string
	Region       string
	Zone         string
	Woreda       string
	Kebele       string
	MembershipID string
	Level        string
	PartyRole    string
	JoinDate     string
	Education    string
	Profession   string
	Provision    string
	Active       bool

	NeedsAccount    bool // pending_account: offer "complete provisioning"
	NeedsCredential bool // credential_pending: offer "resend credential"

	// One-time credential from a just-finished provisioning action.
	CredUsername string
	CredSecret   string

	Success string
	Error   string
}

// loadMember resolves {id}, checks the coordinator scope, and returns nil
// after writing the response when the member can't be shown.
func (h *Handler) loadMember(w http.ResponseWriter, r *http.Request) *models.Member {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return nil
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	member, err := h.Members.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			http.NotFound(w, r)
			return nil
		}
		h.ErrLog.ServerError(w, r, err, "")
		return nil
	}

	if u, ok := auth.CurrentUser(r); ok {
		if scoped := auth.ScopeRegion(u); scoped != "" && member.Region != scoped {
			uierrors.RenderForbidden(w, r, "ይህ አባል ከእርስዎ ክልል ውጪ ነው።")
			return nil
		}
	}
	return member
}

// ServeView handles GET /members/{id}.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	member := h.loadMember(w, r)
	if member == nil {
		return
	}

	vm := viewData{
		BaseVM:          viewdata.NewBaseVM(r, member.FullName, "/members"),
		MemberID:        member.ID.Hex(),
		FullName:        member.FullName,
		Gender:          member.Gender,
		Phone:           member.Phone,
		Email:           member.Email,
		Region:          member.Region,
		Zone:            member.Zone,
		Woreda:          member.Woreda,
		Kebele:          member.Kebele,
		MembershipID:    member.MembershipID,
		Level:           member.Level,
		PartyRole:       member.PartyRole,
		JoinDate:        member.JoinDate.Format(dateLayout),
		Education:       member.EducationLevel,
		Profession:      member.Profession,
		Provision:       member.ProvisionStatus,
		Active:          member.IsActive,
		NeedsAccount:    member.ProvisionStatus == models.ProvisionPending,
		NeedsCredential: member.ProvisionStatus == models.ProvisionCredential,
	}
	if !member.BirthDate.IsZero() {
		vm.BirthDate = member.BirthDate.Format(dateLayout)
	}

	// A provisioning action may have flashed a one-time credential for
	// office handover; it is deleted on this read.
	if username, secret, ok := h.SessionMgr.TakeCredential(w, r); ok {
		vm.CredUsername = username
		vm.CredSecret = secret
	}

	switch r.URL.Query().Get("success") {
	case "provisioned":
		vm.Success = "መለያው ተፈጥሯል እና መረጃው ተልኳል"
	case "resent":
		vm.Success = "የመግቢያ መረጃው እንደገና ተልኳል"
	case "credential_pending":
		vm.Success = "መለያው ተፈጥሯል፤ መላክ ስላልተቻለ መረጃው ከታች ይታያል"
	case "updated":
		vm.Success = "መረጃው ተስተካክሏል"
	}
	if ref := r.URL.Query().Get("ref"); ref != "" && vm.Success != "" {
		vm.Success += " (ማጣቀሻ: " + ref + ")"
	}
	if r.URL.Query().Get("error") == "delivery" {
		vm.Error = "መላክ አልተቻለም፤ እባክዎ ቆይተው እንደገና ይሞክሩ"
	}

	templates.Render(w, r, "members/view", vm)
}
