// internal/app/features/register/register.go
package register

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dalemusser/waffle/pantry/templates"
	validate "github.com/dalemusser/waffle/pantry/validate"

	"github.com/meskelsoft/partyreg/internal/app/registration"
	"github.com/meskelsoft/partyreg/internal/app/system/normalize"
	"github.com/meskelsoft/partyreg/internal/app/system/regioncode"
	"github.com/meskelsoft/partyreg/internal/app/system/timeouts"
	"github.com/meskelsoft/partyreg/internal/app/system/viewdata"
	"github.com/meskelsoft/partyreg/internal/domain/models"
)

type formData struct {
	viewdata.BaseVM
	Error string

	Regions []string
	Levels  []string

	// Sticky form values
	FullName  string
	Gender    string
	BirthDate string
	Phone     string
	Email     string
	Region    string
	Zone      string
	Woreda    string
	Kebele    string
	Level     string
	Education string
	Profession string
}

type successData struct {
	viewdata.BaseVM
	MembershipID string
	Username     string
	Secret       string // shown only when delivery did not happen
	Channel      string
	Delivered    bool
}

const dateLayout = "2006-01-02"

func (h *Handler) blankForm(r *http.Request) formData {
	return formData{
		BaseVM:  viewdata.NewBaseVM(r, "ተመዝገብ", "/"),
		Regions: regioncode.Regions(),
		Levels:  []string{models.LevelFull, models.LevelSupporter},
		Level:   models.LevelFull,
	}
}

// ShowForm handles GET /register.
func (h *Handler) ShowForm(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "register", h.blankForm(r))
}

// Submit handles POST /register.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.BadRequest(w, r, err)
		return
	}

	form := h.blankForm(r)
	form.FullName = strings.TrimSpace(r.FormValue("full_name"))
	form.Gender = r.FormValue("gender")
	form.BirthDate = r.FormValue("birth_date")
	form.Phone = strings.TrimSpace(r.FormValue("phone"))
	form.Email = strings.TrimSpace(r.FormValue("email"))
	form.Region = r.FormValue("region")
	form.Zone = strings.TrimSpace(r.FormValue("zone"))
	form.Woreda = strings.TrimSpace(r.FormValue("woreda"))
	form.Kebele = strings.TrimSpace(r.FormValue("kebele"))
	form.Level = r.FormValue("level")
	form.Education = strings.TrimSpace(r.FormValue("education_level"))
	form.Profession = strings.TrimSpace(r.FormValue("profession"))

	fail := func(msg string) {
		form.Error = msg
		templates.Render(w, r, "register", form)
	}

	if form.FullName == "" {
		fail("ሙሉ ስም ያስገቡ።")
		return
	}
	if form.Gender != "male" && form.Gender != "female" {
		fail("ጾታ ይምረጡ።")
		return
	}
	if normalize.Phone(form.Phone) == "" {
		fail("ስልክ ቁጥር ያስገቡ።")
		return
	}
	if form.Email != "" && !validate.SimpleEmailValid(form.Email) {
		fail("ትክክለኛ ኢሜይል ያስገቡ።")
		return
	}
	if form.Region == "" {
		fail("ክልል ይምረጡ።")
		return
	}
	if form.Level != models.LevelFull && form.Level != models.LevelSupporter {
		fail("የአባልነት ደረጃ ይምረጡ።")
		return
	}

	var birthDate time.Time
	if form.BirthDate != "" {
		var err error
		birthDate, err = time.Parse(dateLayout, form.BirthDate)
		if err != nil {
			fail("የትውልድ ቀን ቅርጸት ትክክል አይደለም።")
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	res, err := h.Orch.Register(ctx, registration.Registrant{
		FullName:       form.FullName,
		Gender:         form.Gender,
		BirthDate:      birthDate,
		Phone:          form.Phone,
		Email:          form.Email,
		Region:         form.Region,
		Zone:           form.Zone,
		Woreda:         form.Woreda,
		Kebele:         form.Kebele,
		Level:          form.Level,
		EducationLevel: form.Education,
		Profession:     form.Profession,
	})
	switch {
	case errors.Is(err, registration.ErrDuplicateRegistrant):
		fail("በዚህ ስልክ ቁጥር ወይም ኢሜይል አስቀድሞ ምዝገባ አለ።")
		return
	case errors.Is(err, registration.ErrAccountProvisioningFailed):
		// The member is recorded; the office completes the account later.
		h.Log.Warn("registration finished without account",
			zap.String("membership_id", res.Member.MembershipID))
	case err != nil:
		h.ErrLog.ServerError(w, r, err, "ምዝገባው አልተሳካም። እባክዎ እንደገና ይሞክሩ።")
		return
	}

	// Pass the one-time credential through a flash so a refresh of the
	// success page cannot replay it.
	if !res.Delivered && !res.Account.ID.IsZero() {
		if err := h.SessionMgr.FlashCredential(w, r, res.Username, res.Secret); err != nil {
			h.Log.Warn("credential flash failed", zap.Error(err))
		}
	}

	q := "?id=" + res.Member.MembershipID + "&ch=" + string(res.Channel)
	if res.Delivered {
		q += "&sent=1"
	}
	http.Redirect(w, r, "/register/success"+q, http.StatusSeeOther)
}

// Success handles GET /register/success. The cleartext credential, when
// present, comes from the one-time flash and is gone after this render.
func (h *Handler) Success(w http.ResponseWriter, r *http.Request) {
	vm := successData{
		BaseVM:       viewdata.NewBaseVM(r, "ምዝገባ ተሳክቷል", "/"),
		MembershipID: r.URL.Query().Get("id"),
		Channel:      r.URL.Query().Get("ch"),
		Delivered:    r.URL.Query().Get("sent") == "1",
	}
	if username, secret, ok := h.SessionMgr.TakeCredential(w, r); ok {
		vm.Username = username
		vm.Secret = secret
	}
	templates.Render(w, r, "register_success", vm)
}
