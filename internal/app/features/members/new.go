// internal/app/features/members/new.go
package members

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/templates"
	validate "github.com/dalemusser/waffle/pantry/validate"
	"go.uber.org/zap"

	"github.com/meskelsoft/partyreg/internal/app/registration"
	"github.com/meskelsoft/partyreg/internal/app/system/auth"
	"github.com/meskelsoft/partyreg/internal/app/system/normalize"
	"github.com/meskelsoft/partyreg/internal/app/system/regioncode"
	"github.com/meskelsoft/partyreg/internal/app/system/timeouts"
	"github.com/meskelsoft/partyreg/internal/app/system/viewdata"
	"github.com/meskelsoft/partyreg/internal/domain/models"
)

type newData struct {
	viewdata.BaseVM
	Error string

	FullName   string
	Gender     string
	BirthDate  string
	Phone      string
	Email      string
	Region     string
	Zone       string
	Woreda     string
	Kebele     string
	Level      string
	PartyRole  string
	JoinDate   string
	Education  string
	Profession string

	Regions      []string
	RegionLocked bool
}

func (h *Handler) blankNewForm(r *http.Request) newData {
	vm := newData{
		BaseVM:  viewdata.NewBaseVM(r, "አዲስ አባል", "/members"),
		Level:   models.LevelFull,
		Regions: regioncode.Regions(),
	}
	if u, ok := auth.CurrentUser(r); ok {
		if scoped := auth.ScopeRegion(u); scoped != "" {
			vm.Region = scoped
			vm.RegionLocked = true
		}
	}
	return vm
}

// ServeNew handles GET /members/new: the office-side registration form.
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "members/new", h.blankNewForm(r))
}

// HandleCreate handles POST /members: office-side registration through the
// same orchestrator as the public form, plus join date backdating.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.BadRequest(w, r, err)
		return
	}

	vm := h.blankNewForm(r)
	vm.FullName = strings.TrimSpace(r.FormValue("full_name"))
	vm.Gender = r.FormValue("gender")
	vm.BirthDate = r.FormValue("birth_date")
	vm.Phone = strings.TrimSpace(r.FormValue("phone"))
	vm.Email = strings.TrimSpace(r.FormValue("email"))
	if !vm.RegionLocked {
		vm.Region = r.FormValue("region")
	}
	vm.Zone = strings.TrimSpace(r.FormValue("zone"))
	vm.Woreda = strings.TrimSpace(r.FormValue("woreda"))
	vm.Kebele = strings.TrimSpace(r.FormValue("kebele"))
	vm.Level = r.FormValue("level")
	vm.PartyRole = strings.TrimSpace(r.FormValue("party_role"))
	vm.JoinDate = r.FormValue("join_date")
	vm.Education = strings.TrimSpace(r.FormValue("education_level"))
	vm.Profession = strings.TrimSpace(r.FormValue("profession"))

	fail := func(msg string) {
		vm.Error = msg
		templates.Render(w, r, "members/new", vm)
	}

	if vm.FullName == "" {
		fail("ሙሉ ስም ያስገቡ።")
		return
	}
	if vm.Gender != "male" && vm.Gender != "female" {
		fail("ጾታ ይምረጡ።")
		return
	}
	if normalize.Phone(vm.Phone) == "" {
		fail("ስልክ ቁጥር ያስገቡ።")
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

	reg := registration.Registrant{
		FullName:       vm.FullName,
		Gender:         vm.Gender,
		Phone:          vm.Phone,
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
		reg.BirthDate = t
	}
	if vm.JoinDate != "" {
		t, err := time.Parse(dateLayout, vm.JoinDate)
		if err != nil {
			fail("የመቀላቀያ ቀን ቅርጸት ትክክል አይደለም።")
			return
		}
		reg.JoinDate = t
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	res, err := h.Orch.Register(ctx, reg)
	switch {
	case errors.Is(err, registration.ErrDuplicateRegistrant):
		fail("በዚህ ስልክ ቁጥር ወይም ኢሜይል አስቀድሞ ምዝገባ አለ።")
		return
	case errors.Is(err, registration.ErrAccountProvisioningFailed):
		h.Log.Warn("office registration finished without account",
			zap.String("membership_id", res.Member.MembershipID))
		http.Redirect(w, r, "/members/"+res.Member.ID.Hex(), http.StatusSeeOther)
		return
	case err != nil:
		h.ErrLog.ServerError(w, r, err, "ምዝገባው አልተሳካም።")
		return
	}

	h.redirectAfterCredential(w, r, res.Member.ID.Hex(), res, "provisioned")
}
