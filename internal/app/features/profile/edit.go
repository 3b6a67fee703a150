// internal/app/features/profile/edit.go
package profile

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/templates"
	validate "github.com/dalemusser/waffle/pantry/validate"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	memberstore "github.com/meskelsoft/partyreg/internal/app/store/members"
	"github.com/meskelsoft/partyreg/internal/app/system/auth"
	"github.com/meskelsoft/partyreg/internal/app/system/timeouts"
	"github.com/meskelsoft/partyreg/internal/app/system/viewdata"
	"github.com/meskelsoft/partyreg/internal/domain/models"
)

type editData struct {
	viewdata.BaseVM
	Error string

	// Read-only context shown above the form.
	FullName     string
	MembershipID string
	Phone        string
	Region       string

	Email      string
	Zone       string
	Woreda     string
	Kebele     string
	Education  string
	Profession string
}

// ownMember resolves the signed-in user's member record. Staff accounts
// without one are sent back to the profile page.
func (h *Handler) ownMember(w http.ResponseWriter, r *http.Request) *models.Member {
	u, ok := auth.CurrentUser(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return nil
	}
	accountID, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		h.ErrLog.BadRequest(w, r, err)
		return nil
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	member, err := h.Members.GetByAccountID(ctx, accountID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			http.Redirect(w, r, "/profile", http.StatusSeeOther)
			return nil
		}
		h.ErrLog.ServerError(w, r, err, "")
		return nil
	}
	return member
}

// ServeEdit handles GET /profile/edit.
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	member := h.ownMember(w, r)
	if member == nil {
		return
	}

	vm := editData{
		BaseVM:       viewdata.NewBaseVM(r, "መገለጫ አስተካክል", "/profile"),
		FullName:     member.FullName,
		MembershipID: member.MembershipID,
		Phone:        member.Phone,
		Region:       member.Region,
		Email:        member.Email,
		Zone:         member.Zone,
		Woreda:       member.Woreda,
		Kebele:       member.Kebele,
		Education:    member.EducationLevel,
		Profession:   member.Profession,
	}
	templates.Render(w, r, "profile_edit", vm)
}

// HandleEdit handles POST /profile/edit. Members may change their contact
// details and address only; name, membership ID, phone, region and level
// changes go through staff.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	member := h.ownMember(w, r)
	if member == nil {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.BadRequest(w, r, err)
		return
	}

	vm := editData{
		BaseVM:       viewdata.NewBaseVM(r, "መገለጫ አስተካክል", "/profile"),
		FullName:     member.FullName,
		MembershipID: member.MembershipID,
		Phone:        member.Phone,
		Region:       member.Region,
		Email:        strings.TrimSpace(r.FormValue("email")),
		Zone:         strings.TrimSpace(r.FormValue("zone")),
		Woreda:       strings.TrimSpace(r.FormValue("woreda")),
		Kebele:       strings.TrimSpace(r.FormValue("kebele")),
		Education:    strings.TrimSpace(r.FormValue("education_level")),
		Profession:   strings.TrimSpace(r.FormValue("profession")),
	}

	if vm.Email != "" && !validate.SimpleEmailValid(vm.Email) {
		vm.Error = "ትክክለኛ ኢሜይል ያስገቡ።"
		templates.Render(w, r, "profile_edit", vm)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	err := h.Members.UpdateContact(ctx, member.ID, memberstore.ContactUpdate{
		Email:          vm.Email,
		Zone:           vm.Zone,
		Woreda:         vm.Woreda,
		Kebele:         vm.Kebele,
		EducationLevel: vm.Education,
		Profession:     vm.Profession,
	})
	if err != nil {
		if errors.Is(err, memberstore.ErrDuplicateEmail) {
			vm.Error = "ይህ ኢሜይል በሌላ አባል ተይዟል።"
			templates.Render(w, r, "profile_edit", vm)
			return
		}
		h.ErrLog.ServerError(w, r, err, "")
		return
	}
	http.Redirect(w, r, "/profile?success=updated", http.StatusSeeOther)
}
