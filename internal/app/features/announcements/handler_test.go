package announcements_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/meskelsoft/partyreg/internal/app/features/announcements"
	uierrors "github.com/meskelsoft/partyreg/internal/app/features/errors"
	announcementstore "github.com/meskelsoft/partyreg/internal/app/store/announcements"
	"github.com/meskelsoft/partyreg/internal/testutil"
)

func newTestHandler(t *testing.T) (*announcements.Handler, *mongo.Database, *announcementstore.Store) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	errLog := uierrors.NewErrorLogger(logger)
	h := announcements.NewHandler(db, errLog, logger)
	return h, db, announcementstore.New(db)
}

func postForm(target string, form url.Values, user testutil.TestUser) *http.Request {
	req := httptest.NewRequest("POST", target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return testutil.WithUser(req, user)
}

func TestHandleCreate(t *testing.T) {
	handler, _, store := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	form := url.Values{
		"title":   {"የዓመቱ ጉባኤ"},
		"content": {"ጉባኤው በመስከረም ይካሄዳል።"},
	}
	req := postForm("/announcements", form, testutil.StaffUser())
	rec := httptest.NewRecorder()
	handler.HandleCreate(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want 303", rec.Code)
	}
	all, err := store.List(ctx, 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 1 || all[0].Title != "የዓመቱ ጉባኤ" {
		t.Fatalf("announcement not created: %v", all)
	}
}

func TestHandleCreate_SanitizesHTML(t *testing.T) {
	handler, _, store := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	form := url.Values{
		"title":   {"ማስታወቂያ"},
		"content": {`<p>ሰላም</p><script>alert("x")</script>`},
	}
	req := postForm("/announcements", form, testutil.AdminUser())
	rec := httptest.NewRecorder()
	handler.HandleCreate(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want 303", rec.Code)
	}
	all, err := store.List(ctx, 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("got %d announcements, want 1", len(all))
	}
	if strings.Contains(all[0].Content, "<script") {
		t.Errorf("script tag survived sanitization: %q", all[0].Content)
	}
	if !strings.Contains(all[0].Content, "<p>ሰላም</p>") {
		t.Errorf("allowed markup was stripped: %q", all[0].Content)
	}
}

func TestHandleEdit(t *testing.T) {
	handler, db, store := newTestHandler(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ann := fx.CreateAnnouncement(ctx, "የድሮ ርዕስ", "ይዘት")

	form := url.Values{
		"title":   {"አዲስ ርዕስ"},
		"content": {"የታደሰ ይዘት"},
	}
	req := postForm("/announcements/"+ann.ID.Hex()+"/edit", form, testutil.StaffUser())
	req = testutil.WithChiURLParam(req, "id", ann.ID.Hex())
	rec := httptest.NewRecorder()
	handler.HandleEdit(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want 303", rec.Code)
	}
	got, err := store.GetByID(ctx, ann.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Title != "አዲስ ርዕስ" || got.Content != "የታደሰ ይዘት" {
		t.Errorf("edit not applied: %q / %q", got.Title, got.Content)
	}
}

func TestHandleDelete(t *testing.T) {
	handler, db, store := newTestHandler(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ann := fx.CreateAnnouncement(ctx, "የሚሰረዝ", "ይዘት")

	req := testutil.NewAuthenticatedRequest("POST", "/announcements/"+ann.ID.Hex()+"/delete", testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "id", ann.ID.Hex())
	rec := httptest.NewRecorder()
	handler.HandleDelete(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want 303", rec.Code)
	}
	all, err := store.List(ctx, 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("announcement survived delete")
	}
}
