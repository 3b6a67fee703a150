package announcementstore_test

import (
	"errors"
	"fmt"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	announcementstore "github.com/meskelsoft/partyreg/internal/app/store/announcements"
	"github.com/meskelsoft/partyreg/internal/domain/models"
	"github.com/meskelsoft/partyreg/internal/testutil"
)

func newStore(t *testing.T) *announcementstore.Store {
	t.Helper()
	db := testutil.SetupTestDB(t)
	store := announcementstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}
	return store
}

func TestStore_CreateAndGet(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Announcement{
		Title:   "አዲስ ዓመት",
		Content: "<p>መልካም አዲስ ዓመት!</p>",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Title != "አዲስ ዓመት" {
		t.Errorf("title: got %q", got.Title)
	}
}

func TestStore_Create_RequiresTitleAndContent(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.Announcement{Content: "ይዘት"}); err == nil {
		t.Error("expected error for missing title")
	}
	if _, err := store.Create(ctx, models.Announcement{Title: "ርዕስ"}); err == nil {
		t.Error("expected error for missing content")
	}
}

func TestStore_List_NewestFirst(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for i := 1; i <= 3; i++ {
		_, err := store.Create(ctx, models.Announcement{
			Title:   fmt.Sprintf("ማስታወቂያ %d", i),
			Content: "ይዘት",
		})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	got, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("List: got %d, want 2", len(got))
	}
	if got[0].Title != "ማስታወቂያ 3" {
		t.Errorf("newest first: got %q", got[0].Title)
	}
}

func TestStore_UpdateAndDelete(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Announcement{Title: "የድሮ ርዕስ", Content: "ይዘት"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.Update(ctx, created.ID, "አዲስ ርዕስ", "አዲስ ይዘት"); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Title != "አዲስ ርዕስ" || got.Content != "አዲስ ይዘት" {
		t.Errorf("update not applied: %q, %q", got.Title, got.Content)
	}

	if err := store.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.GetByID(ctx, created.ID); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Fatalf("expected ErrNoDocuments after delete, got %v", err)
	}
}
