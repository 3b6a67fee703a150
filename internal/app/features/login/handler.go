// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/dalemusser/waffle/pantry/templates"

	uierrors "github.com/meskelsoft/partyreg/internal/app/features/errors"
	accountstore "github.com/meskelsoft/partyreg/internal/app/store/accounts"
	memberstore "github.com/meskelsoft/partyreg/internal/app/store/members"
	"github.com/meskelsoft/partyreg/internal/app/system/auth"
	"github.com/meskelsoft/partyreg/internal/app/system/timeouts"
	"github.com/meskelsoft/partyreg/internal/app/system/viewdata"
)

type Handler struct {
	DB         *mongo.Database
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	Accounts   *accountstore.Store
	Members    *memberstore.Store
}

func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:         db,
		Log:        logger,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
		Accounts:   accountstore.New(db),
		Members:    memberstore.New(db),
	}
}

type loginFormData struct {
	viewdata.BaseVM
	Error    string
	Username string
}

// ShowForm handles GET /login.
func (h *Handler) ShowForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.CurrentUser(r); ok {
		http.Redirect(w, r, landing(r), http.StatusSeeOther)
		return
	}
	templates.Render(w, r, "login", loginFormData{
		BaseVM: viewdata.NewBaseVM(r, "ግባ", "/"),
	})
}

// Submit handles POST /login. Username is the phone number the credential
// was delivered for.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.BadRequest(w, r, err)
		return
	}
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	fail := func(msg string) {
		templates.Render(w, r, "login", loginFormData{
			BaseVM:   viewdata.NewBaseVM(r, "ግባ", "/"),
			Error:    msg,
			Username: username,
		})
	}

	if username == "" || password == "" {
		fail("ስልክ ቁጥር እና የይለፍ ቃል ያስገቡ።")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	account, err := h.Accounts.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Same message as a bad password so usernames can't be probed.
			fail("የተሳሳተ ስልክ ቁጥር ወይም የይለፍ ቃል።")
			return
		}
		h.ErrLog.ServerError(w, r, err, "")
		return
	}
	if err := bcrypt.CompareHashAndPassword(account.PasswordHash, []byte(password)); err != nil {
		fail("የተሳሳተ ስልክ ቁጥር ወይም የይለፍ ቃል።")
		return
	}
	if account.Status != "active" {
		fail("ይህ መለያ ተዘግቷል። እባክዎ ቢሮውን ያነጋግሩ።")
		return
	}

	user := &auth.SessionUser{
		ID:      account.ID.Hex(),
		LoginID: account.Username,
		Role:    account.Role(),
		Region:  account.CoordinatorRegion,
	}
	if member, err := h.Members.GetByID(ctx, account.MemberID); err == nil {
		user.Name = member.FullName
	} else {
		user.Name = account.Username
	}

	if err := h.SessionMgr.SignIn(w, r, user); err != nil {
		h.ErrLog.ServerError(w, r, err, "")
		return
	}

	h.Log.Info("login",
		zap.String("username", account.Username),
		zap.String("role", user.Role))

	switch user.Role {
	case "admin", "staff", "coordinator":
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	default:
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
	}
}

func landing(r *http.Request) string {
	if u, ok := auth.CurrentUser(r); ok {
		switch u.Role {
		case "admin", "staff", "coordinator":
			return "/dashboard"
		}
	}
	return "/profile"
}
