// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"context"
	"net/http"

	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"

	"github.com/meskelsoft/partyreg/internal/app/system/auth"
)

// AnnouncementVM is an announcement rendered in the shared banner strip.
type AnnouncementVM struct {
	ID      string
	Title   string
	Created string
}

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
// Usage:
//
//	type myPageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
//
//	data := myPageData{
//	    BaseVM: viewdata.NewBaseVM(r, "Page Title", "/default-back"),
//	    // page-specific fields...
//	}
type BaseVM struct {
	SiteName string

	// User context (from auth middleware)
	IsLoggedIn bool
	Role       string
	UserName   string
	UserRegion string // coordinator's scoped region, empty otherwise

	// Page context
	Title       string
	BackURL     string
	CurrentPath string

	// CSRF protection
	CSRFToken string

	// Latest announcements for the banner strip
	Announcements []AnnouncementVM
}

var siteName = "የአባላት መዝገብ"

// SetSiteName overrides the default site name. Called once from bootstrap.
func SetSiteName(name string) {
	if name != "" {
		siteName = name
	}
}

// AnnouncementLoader loads the announcements shown in the banner strip.
// Set by bootstrap to avoid a dependency cycle with the store.
type AnnouncementLoader func(ctx context.Context) []AnnouncementVM

var announcementLoader AnnouncementLoader

func SetAnnouncementLoader(loader AnnouncementLoader) {
	announcementLoader = loader
}

// NewBaseVM creates a fully populated BaseVM for a page.
func NewBaseVM(r *http.Request, title, backDefault string) BaseVM {
	vm := BaseVM{
		SiteName:    siteName,
		Title:       title,
		BackURL:     httpnav.ResolveBackURL(r, backDefault),
		CurrentPath: httpnav.CurrentPath(r),
		CSRFToken:   csrf.Token(r),
	}

	if u, ok := auth.CurrentUser(r); ok {
		vm.IsLoggedIn = true
		vm.Role = u.Role
		vm.UserName = u.Name
		vm.UserRegion = auth.ScopeRegion(u)
	}

	if vm.IsLoggedIn && announcementLoader != nil {
		vm.Announcements = announcementLoader(r.Context())
	}

	return vm
}
