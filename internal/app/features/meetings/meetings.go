// internal/app/features/meetings/meetings.go
package meetings

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/meskelsoft/partyreg/internal/app/system/auth"
	"github.com/meskelsoft/partyreg/internal/app/system/timeouts"
	"github.com/meskelsoft/partyreg/internal/app/system/viewdata"
	"github.com/meskelsoft/partyreg/internal/domain/models"
)

const dateTimeLayout = "2006-01-02T15:04"

type meetingRow struct {
	ID        string
	Title     string
	Date      string
	Location  string
	Attendees int64
	Upcoming  bool
}

type listData struct {
	viewdata.BaseVM
	Rows    []meetingRow
	Success string
}

// ServeList handles GET /meetings: all meetings, newest first.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	all, err := h.Meetings.List(ctx)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "")
		return
	}

	now := time.Now()
	rows := make([]meetingRow, 0, len(all))
	for _, m := range all {
		n, err := h.Meetings.AttendanceCount(ctx, m.ID)
		if err != nil {
			h.ErrLog.ServerError(w, r, err, "")
			return
		}
		rows = append(rows, meetingRow{
			ID:        m.ID.Hex(),
			Title:     m.Title,
			Date:      m.MeetingDate.Format("2006-01-02 15:04"),
			Location:  m.Location,
			Attendees: n,
			Upcoming:  m.MeetingDate.After(now),
		})
	}

	vm := listData{BaseVM: viewdata.NewBaseVM(r, "ስብሰባዎች", "/dashboard")}
	vm.Rows = rows
	switch r.URL.Query().Get("success") {
	case "created":
		vm.Success = "ስብሰባው ተፈጥሯል።"
	case "deleted":
		vm.Success = "ስብሰባው ተሰርዟል።"
	}
	templates.Render(w, r, "meetings/list", vm)
}

type formData struct {
	viewdata.BaseVM

	MeetingID   string
	Title       string
	Description string
	Date        string // dateTimeLayout, feeds <input type="datetime-local">
	Location    string

	Errors []string
}

// ServeNew handles GET /meetings/new.
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	vm := formData{BaseVM: viewdata.NewBaseVM(r, "አዲስ ስብሰባ", "/meetings")}
	templates.Render(w, r, "meetings/new", vm)
}

// HandleCreate handles POST /meetings.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.BadRequest(w, r, err)
		return
	}

	vm := formData{BaseVM: viewdata.NewBaseVM(r, "አዲስ ስብሰባ", "/meetings")}
	m, ok := h.meetingFromForm(r, &vm)
	if !ok {
		templates.Render(w, r, "meetings/new", vm)
		return
	}

	if u, okU := auth.CurrentUser(r); okU {
		if creator, err := primitive.ObjectIDFromHex(u.ID); err == nil {
			m.CreatedBy = &creator
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Meetings.Create(ctx, m)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "ስብሰባውን ማስቀመጥ አልተቻለም።")
		return
	}
	h.Log.Info("meeting created",
		zap.String("meeting_id", created.ID.Hex()),
		zap.String("title", created.Title))
	http.Redirect(w, r, "/meetings/"+created.ID.Hex(), http.StatusSeeOther)
}

// ServeEdit handles GET /meetings/{id}/edit.
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	meeting := h.loadMeeting(w, r)
	if meeting == nil {
		return
	}

	vm := formData{BaseVM: viewdata.NewBaseVM(r, "ስብሰባ አስተካክል", "/meetings/"+meeting.ID.Hex())}
	vm.MeetingID = meeting.ID.Hex()
	vm.Title = meeting.Title
	vm.Description = meeting.Description
	vm.Date = meeting.MeetingDate.Format(dateTimeLayout)
	vm.Location = meeting.Location
	templates.Render(w, r, "meetings/edit", vm)
}

// HandleEdit handles POST /meetings/{id}/edit.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	meeting := h.loadMeeting(w, r)
	if meeting == nil {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.BadRequest(w, r, err)
		return
	}

	vm := formData{BaseVM: viewdata.NewBaseVM(r, "ስብሰባ አስተካክል", "/meetings/"+meeting.ID.Hex())}
	vm.MeetingID = meeting.ID.Hex()
	upd, ok := h.meetingFromForm(r, &vm)
	if !ok {
		templates.Render(w, r, "meetings/edit", vm)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Meetings.Update(ctx, meeting.ID, upd); err != nil {
		h.ErrLog.ServerError(w, r, err, "ለውጡን ማስቀመጥ አልተቻለም።")
		return
	}
	http.Redirect(w, r, "/meetings/"+meeting.ID.Hex()+"?success=updated", http.StatusSeeOther)
}

// HandleDelete handles POST /meetings/{id}/delete. Attendance rows for the
// meeting go with it.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	meeting := h.loadMeeting(w, r)
	if meeting == nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Meetings.Delete(ctx, meeting.ID); err != nil {
		h.ErrLog.ServerError(w, r, err, "")
		return
	}
	h.Log.Info("meeting deleted",
		zap.String("meeting_id", meeting.ID.Hex()),
		zap.String("title", meeting.Title))
	http.Redirect(w, r, "/meetings?success=deleted", http.StatusSeeOther)
}

// meetingFromForm validates the posted fields into a Meeting, collecting
// any problems on vm. It also echoes the raw values back for re-display.
func (h *Handler) meetingFromForm(r *http.Request, vm *formData) (models.Meeting, bool) {
	vm.Title = strings.TrimSpace(r.PostFormValue("title"))
	vm.Description = strings.TrimSpace(r.PostFormValue("description"))
	vm.Date = strings.TrimSpace(r.PostFormValue("meeting_date"))
	vm.Location = strings.TrimSpace(r.PostFormValue("location"))

	if vm.Title == "" {
		vm.Errors = append(vm.Errors, "ርዕስ ያስፈልጋል።")
	}
	var when time.Time
	if vm.Date == "" {
		vm.Errors = append(vm.Errors, "ቀን እና ሰዓት ያስፈልጋል።")
	} else {
		var err error
		when, err = time.ParseInLocation(dateTimeLayout, vm.Date, time.Local)
		if err != nil {
			vm.Errors = append(vm.Errors, "ቀኑ አልተረዳም።")
		}
	}
	if vm.Location == "" {
		vm.Errors = append(vm.Errors, "ቦታ ያስፈልጋል።")
	}
	if len(vm.Errors) > 0 {
		return models.Meeting{}, false
	}

	return models.Meeting{
		Title:       vm.Title,
		Description: vm.Description,
		MeetingDate: when,
		Location:    vm.Location,
	}, true
}

// loadMeeting resolves {id} and returns nil after writing the response
// when the meeting can't be shown.
func (h *Handler) loadMeeting(w http.ResponseWriter, r *http.Request) *models.Meeting {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return nil
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	meeting, err := h.Meetings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			http.NotFound(w, r)
			return nil
		}
		h.ErrLog.ServerError(w, r, err, "")
		return nil
	}
	return meeting
}
