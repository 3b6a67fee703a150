// internal/app/features/meetings/attendance.go
package meetings

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	meetingstore "github.com/meskelsoft/partyreg/internal/app/store/meetings"
	"github.com/meskelsoft/partyreg/internal/app/system/auth"
	"github.com/meskelsoft/partyreg/internal/app/system/timeouts"
	"github.com/meskelsoft/partyreg/internal/app/system/viewdata"
)

type attendeeRow struct {
	MemberID     string
	FullName     string
	MembershipID string
	Region       string
	MarkedAt     string
}

type viewData struct {
	viewdata.BaseVM

	MeetingID   string
	Title       string
	Description string
	Date        string
	Location    string
	Upcoming    bool

	Attendees []attendeeRow
	Count     int

	Success string
	Error   string
}

// ServeView handles GET /meetings/{id}: the meeting plus its attendance
// sheet and the mark-by-membership-ID form.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	meeting := h.loadMeeting(w, r)
	if meeting == nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	marks, err := h.Meetings.Attendees(ctx, meeting.ID)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "")
		return
	}

	rows := make([]attendeeRow, 0, len(marks))
	for _, a := range marks {
		row := attendeeRow{
			MemberID: a.MemberID.Hex(),
			MarkedAt: a.AttendedAt.Format("2006-01-02 15:04"),
		}
		// The member may have been removed since; keep the row with the
		// raw id so the sheet still adds up.
		if m, err := h.Members.GetByID(ctx, a.MemberID); err == nil {
			row.FullName = m.FullName
			row.MembershipID = m.MembershipID
			row.Region = m.Region
		}
		rows = append(rows, row)
	}

	vm := viewData{BaseVM: viewdata.NewBaseVM(r, meeting.Title, "/meetings")}
	vm.MeetingID = meeting.ID.Hex()
	vm.Title = meeting.Title
	vm.Description = meeting.Description
	vm.Date = meeting.MeetingDate.Format("2006-01-02 15:04")
	vm.Location = meeting.Location
	vm.Upcoming = meeting.MeetingDate.After(time.Now())
	vm.Attendees = rows
	vm.Count = len(rows)

	switch r.URL.Query().Get("success") {
	case "updated":
		vm.Success = "ለውጡ ተቀምጧል።"
	case "marked":
		vm.Success = "መገኘት ተመዝግቧል።"
	case "unmarked":
		vm.Success = "ምዝገባው ተሰርዟል።"
	}
	switch r.URL.Query().Get("error") {
	case "notfound":
		vm.Error = "በዚህ የአባልነት መለያ የተመዘገበ አባል አልተገኘም።"
	case "already":
		vm.Error = "የዚህ አባል መገኘት ቀድሞ ተመዝግቧል።"
	case "scope":
		vm.Error = "ይህ አባል ከእርስዎ ክልል ውጪ ነው።"
	}

	templates.Render(w, r, "meetings/view", vm)
}

// HandleMark handles POST /meetings/{id}/attend: the clerk types the
// member's membership ID off their card. Marking twice is a no-op
// surfaced as a friendly error.
func (h *Handler) HandleMark(w http.ResponseWriter, r *http.Request) {
	meeting := h.loadMeeting(w, r)
	if meeting == nil {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.BadRequest(w, r, err)
		return
	}

	back := "/meetings/" + meeting.ID.Hex()
	membershipID := strings.TrimSpace(r.PostFormValue("membership_id"))
	if membershipID == "" {
		http.Redirect(w, r, back+"?error=notfound", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	member, err := h.Members.GetByMembershipID(ctx, membershipID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			http.Redirect(w, r, back+"?error=notfound", http.StatusSeeOther)
			return
		}
		h.ErrLog.ServerError(w, r, err, "")
		return
	}

	if u, ok := auth.CurrentUser(r); ok {
		if scoped := auth.ScopeRegion(u); scoped != "" && member.Region != scoped {
			http.Redirect(w, r, back+"?error=scope", http.StatusSeeOther)
			return
		}
	}

	if _, err := h.Meetings.MarkAttendance(ctx, member.ID, meeting.ID); err != nil {
		if errors.Is(err, meetingstore.ErrAlreadyMarked) {
			http.Redirect(w, r, back+"?error=already", http.StatusSeeOther)
			return
		}
		h.ErrLog.ServerError(w, r, err, "")
		return
	}

	h.Log.Info("attendance marked",
		zap.String("meeting_id", meeting.ID.Hex()),
		zap.String("membership_id", member.MembershipID))
	http.Redirect(w, r, back+"?success=marked", http.StatusSeeOther)
}

// HandleUnmark handles POST /meetings/{id}/unattend for fixing a
// mistaken mark.
func (h *Handler) HandleUnmark(w http.ResponseWriter, r *http.Request) {
	meeting := h.loadMeeting(w, r)
	if meeting == nil {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.BadRequest(w, r, err)
		return
	}

	back := "/meetings/" + meeting.ID.Hex()
	memberID, err := primitive.ObjectIDFromHex(r.PostFormValue("member_id"))
	if err != nil {
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Meetings.UnmarkAttendance(ctx, memberID, meeting.ID); err != nil {
		h.ErrLog.ServerError(w, r, err, "")
		return
	}
	http.Redirect(w, r, back+"?success=unmarked", http.StatusSeeOther)
}
