package home_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/meskelsoft/partyreg/internal/app/features/home"
	"github.com/meskelsoft/partyreg/internal/testutil"
)

func TestServeRoot_RedirectsByRole(t *testing.T) {
	handler := home.NewHandler(nil, zap.NewNop())

	tests := []struct {
		name string
		user testutil.TestUser
		want string
	}{
		{"admin", testutil.AdminUser(), "/dashboard"},
		{"staff", testutil.StaffUser(), "/dashboard"},
		{"coordinator", testutil.CoordinatorUser("አማራ"), "/dashboard"},
		{"member", testutil.MemberUser(), "/profile"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.NewAuthenticatedRequest("GET", "/", tt.user)
			rec := httptest.NewRecorder()
			handler.ServeRoot(rec, req)

			if rec.Code != http.StatusSeeOther {
				t.Fatalf("status: got %d, want 303", rec.Code)
			}
			if loc := rec.Header().Get("Location"); loc != tt.want {
				t.Errorf("redirect: got %q, want %q", loc, tt.want)
			}
		})
	}
}
