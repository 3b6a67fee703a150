// internal/app/features/members/list.go
package members

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"

	memberstore "github.com/meskelsoft/partyreg/internal/app/store/members"
	"github.com/meskelsoft/partyreg/internal/app/system/auth"
	"github.com/meskelsoft/partyreg/internal/app/system/csvutil"
	"github.com/meskelsoft/partyreg/internal/app/system/regioncode"
	"github.com/meskelsoft/partyreg/internal/app/system/timeouts"
	"github.com/meskelsoft/partyreg/internal/app/system/viewdata"
	"github.com/meskelsoft/partyreg/internal/domain/models"
)

const dateLayout = "2006-01-02"

// memberRow is one line of the staff member table.
type memberRow struct {
	ID           string
	FullName     string
	MembershipID string
	Phone        string
	Region       string
	Level        string
	JoinDate     string
	Provision    string
	Active       bool
}

type listData struct {
	viewdata.BaseVM

	Rows  []memberRow
	Total int64

	// filter state
	Query      string
	Region     string
	JoinedFrom string
	JoinedTo   string

	Regions      []string
	RegionLocked bool // coordinators cannot change the region filter

	Success string
}

// filterFromRequest builds the store filter from query params, enforcing
// the coordinator's region scope.
func filterFromRequest(r *http.Request) memberstore.Filter {
	q := r.URL.Query()
	f := memberstore.Filter{
		Query:      strings.TrimSpace(q.Get("q")),
		Region:     q.Get("region"),
		ActiveOnly: q.Get("all") != "1",
	}
	if t, err := time.Parse(dateLayout, q.Get("from")); err == nil {
		f.JoinedFrom = t
	}
	if t, err := time.Parse(dateLayout, q.Get("to")); err == nil {
		f.JoinedTo = t
	}
	if u, ok := auth.CurrentUser(r); ok {
		if scoped := auth.ScopeRegion(u); scoped != "" {
			f.Region = scoped
		}
	}
	return f
}

// ServeList handles GET /members.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	f := filterFromRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	members, err := h.Members.List(ctx, f)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "")
		return
	}
	total, err := h.Members.Count(ctx, f)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "")
		return
	}

	vm := listData{
		BaseVM:     viewdata.NewBaseVM(r, "አባላት", "/dashboard"),
		Rows:       toRows(members),
		Total:      total,
		Query:      f.Query,
		Region:     f.Region,
		JoinedFrom: r.URL.Query().Get("from"),
		JoinedTo:   r.URL.Query().Get("to"),
		Regions:    regioncode.Regions(),
	}
	if u, ok := auth.CurrentUser(r); ok {
		vm.RegionLocked = auth.ScopeRegion(u) != ""
	}

	switch r.URL.Query().Get("success") {
	case "registered":
		vm.Success = "አባል ተመዝግቧል"
	case "updated":
		vm.Success = "መረጃው ተስተካክሏል"
	case "deactivated":
		vm.Success = "አባሉ ታግዷል"
	case "reactivated":
		vm.Success = "አባሉ ተመልሷል"
	}

	templates.Render(w, r, "members/list", vm)
}

// ServeExportCSV handles GET /members/export.csv with the same filters as
// the list screen.
func (h *Handler) ServeExportCSV(w http.ResponseWriter, r *http.Request) {
	f := filterFromRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	members, err := h.Members.List(ctx, f)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "")
		return
	}

	filename := "members-" + time.Now().Format(dateLayout) + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := csvutil.WriteMembers(w, members); err != nil {
		// Headers are gone; just log.
		h.Log.Error("csv export failed", zap.Error(err))
	}
}

func toRows(members []models.Member) []memberRow {
	rows := make([]memberRow, 0, len(members))
	for _, m := range members {
		rows = append(rows, memberRow{
			ID:           m.ID.Hex(),
			FullName:     m.FullName,
			MembershipID: m.MembershipID,
			Phone:        m.Phone,
			Region:       m.Region,
			Level:        m.Level,
			JoinDate:     m.JoinDate.Format(dateLayout),
			Provision:    m.ProvisionStatus,
			Active:       m.IsActive,
		})
	}
	return rows
}
