// internal/app/features/dashboard/dashboard.go
package dashboard

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/dalemusser/waffle/pantry/templates"

	memberstore "github.com/meskelsoft/partyreg/internal/app/store/members"
	"github.com/meskelsoft/partyreg/internal/app/system/auth"
	"github.com/meskelsoft/partyreg/internal/app/system/timeouts"
	"github.com/meskelsoft/partyreg/internal/app/system/viewdata"
)

type statRow struct {
	Label string
	Count int64
}

type recentRow struct {
	ID           string
	FullName     string
	MembershipID string
	Region       string
	JoinDate     string
}

type pendingRow struct {
	ID           string
	FullName     string
	MembershipID string
	Provision    string
}

type dashData struct {
	viewdata.BaseVM

	ScopedRegion string // empty unless the viewer is a coordinator

	TotalActive int64
	ByGender    []statRow
	ByRegion    []statRow
	ByJoinYear  []statRow

	Recent  []recentRow
	Pending []pendingRow

	UpcomingMeetings int
}

// ServeDashboard handles GET /dashboard. Coordinators see only their
// region's numbers.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	region := ""
	if u, ok := auth.CurrentUser(r); ok {
		region = auth.ScopeRegion(u)
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	vm := dashData{
		BaseVM:       viewdata.NewBaseVM(r, "ዳሽቦርድ", "/"),
		ScopedRegion: region,
	}

	total, err := h.Members.Count(ctx, memberstore.Filter{Region: region, ActiveOnly: true})
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "")
		return
	}
	vm.TotalActive = total

	gender, err := h.Members.CountByGender(ctx, region)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "")
		return
	}
	for _, row := range gender {
		label := "ሴት"
		if row.Key == "male" {
			label = "ወንድ"
		}
		vm.ByGender = append(vm.ByGender, statRow{Label: label, Count: row.Count})
	}

	if region == "" {
		byRegion, err := h.Members.CountByRegion(ctx, "")
		if err != nil {
			h.ErrLog.ServerError(w, r, err, "")
			return
		}
		for _, row := range byRegion {
			vm.ByRegion = append(vm.ByRegion, statRow{Label: row.Key, Count: row.Count})
		}
	}

	years, err := h.Members.CountByJoinYear(ctx, region)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "")
		return
	}
	for _, row := range years {
		vm.ByJoinYear = append(vm.ByJoinYear, statRow{
			Label: strconv.Itoa(row.Year),
			Count: row.Count,
		})
	}

	recent, err := h.Members.Recent(ctx, memberstore.Filter{Region: region, ActiveOnly: true}, 10)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "")
		return
	}
	for _, m := range recent {
		vm.Recent = append(vm.Recent, recentRow{
			ID:           m.ID.Hex(),
			FullName:     m.FullName,
			MembershipID: m.MembershipID,
			Region:       m.Region,
			JoinDate:     m.JoinDate.Format("2006-01-02"),
		})
	}

	pending, err := h.Members.PendingProvisioning(ctx, region)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "")
		return
	}
	for _, m := range pending {
		vm.Pending = append(vm.Pending, pendingRow{
			ID:           m.ID.Hex(),
			FullName:     m.FullName,
			MembershipID: m.MembershipID,
			Provision:    m.ProvisionStatus,
		})
	}

	if upcoming, err := h.Meetings.Upcoming(ctx, time.Now()); err == nil {
		vm.UpcomingMeetings = len(upcoming)
	}

	templates.Render(w, r, "dashboard", vm)
}
