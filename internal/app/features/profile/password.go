// internal/app/features/profile/password.go
package profile

import (
	"context"
	"net/http"
	"unicode/utf8"

	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/meskelsoft/partyreg/internal/app/system/auth"
	"github.com/meskelsoft/partyreg/internal/app/system/timeouts"
	"github.com/meskelsoft/partyreg/internal/app/system/viewdata"
)

const minPasswordLen = 8

type passwordData struct {
	viewdata.BaseVM
	Errors []string
}

// ServePassword handles GET /profile/password.
func (h *Handler) ServePassword(w http.ResponseWriter, r *http.Request) {
	vm := passwordData{BaseVM: viewdata.NewBaseVM(r, "የይለፍ ቃል ቀይር", "/profile")}
	templates.Render(w, r, "profile_password", vm)
}

// HandlePassword handles POST /profile/password. The current password
// must verify before the new one is accepted.
func (h *Handler) HandlePassword(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	accountID, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		h.ErrLog.BadRequest(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.BadRequest(w, r, err)
		return
	}

	current := r.PostFormValue("current_password")
	next := r.PostFormValue("new_password")
	confirm := r.PostFormValue("confirm_password")

	vm := passwordData{BaseVM: viewdata.NewBaseVM(r, "የይለፍ ቃል ቀይር", "/profile")}
	if utf8.RuneCountInString(next) < minPasswordLen {
		vm.Errors = append(vm.Errors, "አዲሱ የይለፍ ቃል ቢያንስ 8 ፊደሎች መሆን አለበት።")
	}
	if next != confirm {
		vm.Errors = append(vm.Errors, "አዲሶቹ የይለፍ ቃሎች አይመሳሰሉም።")
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	account, err := h.Accounts.GetByID(ctx, accountID)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "")
		return
	}
	if err := bcrypt.CompareHashAndPassword(account.PasswordHash, []byte(current)); err != nil {
		vm.Errors = append(vm.Errors, "የአሁኑ የይለፍ ቃል ትክክል አይደለም።")
	}

	if len(vm.Errors) > 0 {
		templates.Render(w, r, "profile_password", vm)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "")
		return
	}
	if err := h.Accounts.SetPasswordHash(ctx, account.ID, hash); err != nil {
		h.ErrLog.ServerError(w, r, err, "የይለፍ ቃሉን ማስቀመጥ አልተቻለም።")
		return
	}

	h.Log.Info("password changed", zap.String("username", account.Username))
	http.Redirect(w, r, "/profile?success=password", http.StatusSeeOther)
}
