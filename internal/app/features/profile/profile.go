// internal/app/features/profile/profile.go
package profile

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/meskelsoft/partyreg/internal/app/system/auth"
	"github.com/meskelsoft/partyreg/internal/app/system/timeouts"
	"github.com/meskelsoft/partyreg/internal/app/system/viewdata"
	"github.com/meskelsoft/partyreg/internal/domain/models"
)

const dateLayout = "2006-01-02"

type attendanceRow struct {
	MeetingTitle string
	MeetingDate  string
	MarkedAt     string
}

type upcomingRow struct {
	Title    string
	Date     string
	Location string
}

type profileData struct {
	viewdata.BaseVM

	Username string
	RoleName string

	// Member record; empty for pure staff accounts.
	HasMember    bool
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

	Attendance []attendanceRow
	Upcoming   []upcomingRow

	Success string
}

// ServeProfile handles GET /profile: the signed-in user's own record,
// their attendance history and upcoming meetings.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	vm := profileData{BaseVM: viewdata.NewBaseVM(r, "የኔ መገለጫ", "/")}
	vm.Username = u.LoginID
	vm.RoleName = roleName(u.Role)
	switch r.URL.Query().Get("success") {
	case "password":
		vm.Success = "የይለፍ ቃልዎ ተቀይሯል።"
	case "updated":
		vm.Success = "መገለጫዎ ተስተካክሏል።"
	}

	member, err := h.Members.GetByAccountID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			h.ErrLog.ServerError(w, r, err, "")
			return
		}
		// Staff account with no member record: show the account alone.
		templates.Render(w, r, "profile", vm)
		return
	}

	vm.HasMember = true
	vm.FullName = member.FullName
	vm.Gender = genderName(member.Gender)
	vm.BirthDate = member.BirthDate.Format(dateLayout)
	vm.Phone = member.Phone
	vm.Email = member.Email
	vm.Region = member.Region
	vm.Zone = member.Zone
	vm.Woreda = member.Woreda
	vm.Kebele = member.Kebele
	vm.MembershipID = member.MembershipID
	vm.Level = levelName(member.Level)
	vm.PartyRole = member.PartyRole
	vm.JoinDate = member.JoinDate.Format(dateLayout)

	marks, err := h.Meetings.MemberAttendance(ctx, member.ID)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "")
		return
	}
	for _, a := range marks {
		row := attendanceRow{MarkedAt: a.AttendedAt.Format(dateLayout)}
		if m, err := h.Meetings.GetByID(ctx, a.MeetingID); err == nil {
			row.MeetingTitle = m.Title
			row.MeetingDate = m.MeetingDate.Format(dateLayout)
		}
		vm.Attendance = append(vm.Attendance, row)
	}

	upcoming, err := h.Meetings.Upcoming(ctx, time.Now())
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "")
		return
	}
	for _, m := range upcoming {
		vm.Upcoming = append(vm.Upcoming, upcomingRow{
			Title:    m.Title,
			Date:     m.MeetingDate.Format("2006-01-02 15:04"),
			Location: m.Location,
		})
	}

	templates.Render(w, r, "profile", vm)
}

func roleName(role string) string {
	switch role {
	case "admin":
		return "አስተዳዳሪ"
	case "staff":
		return "ሠራተኛ"
	case "coordinator":
		return "አስተባባሪ"
	default:
		return "አባል"
	}
}

func genderName(g string) string {
	switch g {
	case "male":
		return "ወንድ"
	case "female":
		return "ሴት"
	default:
		return g
	}
}

func levelName(l string) string {
	switch l {
	case models.LevelFull:
		return "ሙሉ አባል"
	case models.LevelSupporter:
		return "ደጋፊ"
	default:
		return l
	}
}
