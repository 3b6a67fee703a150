// internal/app/features/announcements/announcements.go
package announcements

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/meskelsoft/partyreg/internal/app/system/auth"
	"github.com/meskelsoft/partyreg/internal/app/system/htmlsanitize"
	"github.com/meskelsoft/partyreg/internal/app/system/timeouts"
	"github.com/meskelsoft/partyreg/internal/app/system/viewdata"
	"github.com/meskelsoft/partyreg/internal/domain/models"
)

const listLimit = 50

type announcementRow struct {
	ID      string
	Title   string
	Created string
}

type listData struct {
	viewdata.BaseVM
	Rows     []announcementRow
	CanWrite bool
	Success  string
}

// ServeList handles GET /announcements: the newest announcements for any
// signed-in user, with authoring actions for staff.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	all, err := h.Store.List(ctx, listLimit)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "")
		return
	}

	rows := make([]announcementRow, 0, len(all))
	for _, a := range all {
		rows = append(rows, announcementRow{
			ID:      a.ID.Hex(),
			Title:   a.Title,
			Created: a.CreatedAt.Format("2006-01-02"),
		})
	}

	vm := listData{BaseVM: viewdata.NewBaseVM(r, "ማስታወቂያዎች", "/")}
	vm.Rows = rows
	vm.CanWrite = canWrite(r)
	switch r.URL.Query().Get("success") {
	case "created":
		vm.Success = "ማስታወቂያው ታትሟል።"
	case "deleted":
		vm.Success = "ማስታወቂያው ተሰርዟል።"
	}
	templates.Render(w, r, "announcements/list", vm)
}

type showData struct {
	viewdata.BaseVM
	AnnouncementID string
	AnnTitle       string
	Content        template.HTML
	Created        string
	CanWrite       bool
	Success        string
}

// ServeShow handles GET /announcements/{id}.
func (h *Handler) ServeShow(w http.ResponseWriter, r *http.Request) {
	ann := h.loadAnnouncement(w, r)
	if ann == nil {
		return
	}

	vm := showData{BaseVM: viewdata.NewBaseVM(r, ann.Title, "/announcements")}
	vm.AnnouncementID = ann.ID.Hex()
	vm.AnnTitle = ann.Title
	vm.Content = htmlsanitize.PrepareForDisplay(ann.Content)
	vm.Created = ann.CreatedAt.Format("2006-01-02")
	vm.CanWrite = canWrite(r)
	if r.URL.Query().Get("success") == "updated" {
		vm.Success = "ለውጡ ተቀምጧል።"
	}
	templates.Render(w, r, "announcements/show", vm)
}

type formData struct {
	viewdata.BaseVM
	AnnouncementID string
	AnnTitle       string
	Content        string
	Errors         []string
}

// ServeNew handles GET /announcements/new.
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	vm := formData{BaseVM: viewdata.NewBaseVM(r, "አዲስ ማስታወቂያ", "/announcements")}
	templates.Render(w, r, "announcements/new", vm)
}

// HandleCreate handles POST /announcements. Content is sanitized before
// it ever reaches the store.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.BadRequest(w, r, err)
		return
	}

	vm := formData{BaseVM: viewdata.NewBaseVM(r, "አዲስ ማስታወቂያ", "/announcements")}
	title, content, ok := fieldsFromForm(r, &vm)
	if !ok {
		templates.Render(w, r, "announcements/new", vm)
		return
	}

	ann := models.Announcement{Title: title, Content: content}
	if u, okU := auth.CurrentUser(r); okU {
		if author, err := primitive.ObjectIDFromHex(u.ID); err == nil {
			ann.AuthorID = &author
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Store.Create(ctx, ann)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "ማስታወቂያውን ማስቀመጥ አልተቻለም።")
		return
	}
	h.Log.Info("announcement published",
		zap.String("announcement_id", created.ID.Hex()),
		zap.String("title", created.Title))
	http.Redirect(w, r, "/announcements?success=created", http.StatusSeeOther)
}

// ServeEdit handles GET /announcements/{id}/edit.
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	ann := h.loadAnnouncement(w, r)
	if ann == nil {
		return
	}

	vm := formData{BaseVM: viewdata.NewBaseVM(r, "ማስታወቂያ አስተካክል", "/announcements/"+ann.ID.Hex())}
	vm.AnnouncementID = ann.ID.Hex()
	vm.AnnTitle = ann.Title
	vm.Content = ann.Content
	templates.Render(w, r, "announcements/edit", vm)
}

// HandleEdit handles POST /announcements/{id}/edit.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	ann := h.loadAnnouncement(w, r)
	if ann == nil {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.BadRequest(w, r, err)
		return
	}

	vm := formData{BaseVM: viewdata.NewBaseVM(r, "ማስታወቂያ አስተካክል", "/announcements/"+ann.ID.Hex())}
	vm.AnnouncementID = ann.ID.Hex()
	title, content, ok := fieldsFromForm(r, &vm)
	if !ok {
		templates.Render(w, r, "announcements/edit", vm)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Store.Update(ctx, ann.ID, title, content); err != nil {
		h.ErrLog.ServerError(w, r, err, "ለውጡን ማስቀመጥ አልተቻለም።")
		return
	}
	http.Redirect(w, r, "/announcements/"+ann.ID.Hex()+"?success=updated", http.StatusSeeOther)
}

// HandleDelete handles POST /announcements/{id}/delete.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ann := h.loadAnnouncement(w, r)
	if ann == nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Store.Delete(ctx, ann.ID); err != nil {
		h.ErrLog.ServerError(w, r, err, "")
		return
	}
	h.Log.Info("announcement deleted", zap.String("announcement_id", ann.ID.Hex()))
	http.Redirect(w, r, "/announcements?success=deleted", http.StatusSeeOther)
}

// fieldsFromForm validates the posted title/content, sanitizing the
// content. Plain text is kept as typed; it is paragraph-wrapped at
// display time.
func fieldsFromForm(r *http.Request, vm *formData) (title, content string, ok bool) {
	vm.AnnTitle = strings.TrimSpace(r.PostFormValue("title"))
	vm.Content = strings.TrimSpace(r.PostFormValue("content"))

	if vm.AnnTitle == "" {
		vm.Errors = append(vm.Errors, "ርዕስ ያስፈልጋል።")
	}
	if vm.Content == "" {
		vm.Errors = append(vm.Errors, "ይዘት ያስፈልጋል።")
	}
	if len(vm.Errors) > 0 {
		return "", "", false
	}

	content = vm.Content
	if !htmlsanitize.IsPlainText(content) {
		content = htmlsanitize.Sanitize(content)
	}
	return vm.AnnTitle, content, true
}

func (h *Handler) loadAnnouncement(w http.ResponseWriter, r *http.Request) *models.Announcement {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return nil
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ann, err := h.Store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			http.NotFound(w, r)
			return nil
		}
		h.ErrLog.ServerError(w, r, err, "")
		return nil
	}
	return ann
}

func canWrite(r *http.Request) bool {
	u, ok := auth.CurrentUser(r)
	if !ok {
		return false
	}
	return u.Role == "admin" || u.Role == "staff"
}
