// internal/app/features/members/edit.go
package members

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/templates"
	validate "github.com/dalemusser/waffle/pantry/validate"

	memberstore "github.com/meskelsoft/partyreg/internal/app/store/members"
	"github.com/meskelsoft/partyreg/internal/app/system/regioncode"
	"github.com/meskelsoft/partyreg/internal/app/system/timeouts"
	"github.com/meskelsoft/partyreg/internal/app/system/viewdata"
	"github.com/meskelsoft/partyreg/internal/domain/models"
)

type editData struct {
	viewdata.BaseVM
	Error string

	MemberID     string
	MembershipID string // read-only
	Phone        string // read-only

	FullName   string
	Gender     string
	BirthDate  string
	Email      string
	Region     string
	Zone       string
	Woreda     string
	Kebele     string
	Level      string
	PartyRole  string
	Education  string
	Profession string

	Regions []string
}

// ServeEdit handles GET /members/{id}/edit.
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	member := h.loadMember(w, r)
	if member == nil {
		return
	}

	vm := editData{
		BaseVM:       viewdata.NewBaseVM(r, "አባል አስተካክል", "/members/"+member.ID.Hex()),
		MemberID:     member.ID.Hex(),
		MembershipID: member.MembershipID,
		Phone:        member.Phone,
		FullName:     member.FullName,
		Gender:       member.Gender,
		Email:        member.Email,
		Region:       member.Region,
		Zone:         member.Zone,
		Woreda:       member.Woreda,
		Kebele:       member.Kebele,
		Level:        member.Level,
		PartyRole:    member.PartyRole,
		Education:    member.EducationLevel,
		Profession:   member.Profession,
		Regions:      regioncode.Regions(),
	}
	if !member.BirthDate.IsZero() {
		vm.BirthDate = member.BirthDate.Format(dateLayout)
	}
	templates.Render(w, r, "members/edit", vm)
}

// HandleEdit handles POST /members/{id}/edit. Membership ID, phone and join
// date are never editable from this screen.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	member := h.loadMember(w, r)
	if member == nil {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.BadRequest(w, r, err)
		return
	}

	vm := editData{
		BaseVM:       viewdata.NewBaseVM(r, "አባል አስተካክል", "/members/"+member.ID.Hex()),
		MemberID:     member.ID.Hex(),
		MembershipID: member.MembershipID,
		Phone:        member.Phone,
		FullName:     strings.TrimSpace(r.FormValue("full_name")),
		Gender:       r.FormValue("gender"),
		BirthDate:    r.FormValue("birth_date"),
		Email:        strings.TrimSpace(r.FormValue("email")),
		Region:       r.FormValue("region"),
		Zone:         strings.TrimSpace(r.FormValue("zone")),
		Woreda:       strings.TrimSpace(r.FormValue("woreda")),
		Kebele:       strings.TrimSpace(r.FormValue("kebele")),
		Level:        r.FormValue("level"),
		PartyRole:    strings.TrimSpace(r.FormValue("party_role")),
		Education:    strings.TrimSpace(r.FormValue("education_level")),
		Profession:   strings.TrimSpace(r.FormValue("profession")),
		Regions:      regioncode.Regions(),
	}

	fail := func(msg string) {
		vm.Error = msg
		templates.Render(w, r, "members/edit", vm)
	}

	if vm.FullName == "" {
		fail("ሙሉ ስም ያስገቡ።")
		return
	}
	if vm.Gender != "male" && vm.Gender != "female" {
		fail("ጾታ ይምረጡ።")
		return
	}
	if vm.Email != "" && !validate.SimpleEmailValid(vm.Email) {
		fail("ትክክለኛ ኢሜይል ያስገቡ።")
		return
	}
	if vm.Region == "" {
		fail("ክልል ይምረጡ።")
		return
	}
	if vm.Level != models.LevelFull && vm.Level != models.LevelSupporter {
		fail("የአባልነት ደረጃ ይምረጡ።")
		return
	}

	upd := memberstore.ProfileUpdate{
		FullName:       vm.FullName,
		Gender:         vm.Gender,
		Email:          vm.Email,
		Region:         vm.Region,
		Zone:           vm.Zone,
		Woreda:         vm.Woreda,
		Kebele:         vm.Kebele,
		Level:          vm.Level,
		PartyRole:      vm.PartyRole,
		EducationLevel: vm.Education,
		Profession:     vm.Profession,
	}
	if vm.BirthDate != "" {
		t, err := time.Parse(dateLayout, vm.BirthDate)
		if err != nil {
			fail("የትውልድ ቀን ቅርጸት ትክክል አይደለም።")
			return
		}
		upd.BirthDate = t
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Members.UpdateProfile(ctx, member.ID, upd); err != nil {
		h.ErrLog.ServerError(w, r, err, "")
		return
	}
	http.Redirect(w, r, "/members/"+member.ID.Hex()+"?success=updated", http.StatusSeeOther)
}
