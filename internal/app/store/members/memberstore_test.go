package memberstore_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	memberstore "github.com/meskelsoft/partyreg/internal/app/store/members"
	"github.com/meskelsoft/partyreg/internal/domain/models"
	"github.com/meskelsoft/partyreg/internal/testutil"
)

func newStore(t *testing.T) *memberstore.Store {
	t.Helper()
	db := testutil.SetupTestDB(t)
	store := memberstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}
	return store
}

func member(name, phone, region, membershipID string) models.Member {
	return models.Member{
		FullName:     name,
		Gender:       "female",
		BirthDate:    time.Date(1992, 3, 14, 0, 0, 0, 0, time.UTC),
		Phone:        phone,
		Region:       region,
		MembershipID: membershipID,
		Level:        models.LevelFull,
		JoinDate:     time.Now().UTC(),
	}
}

func TestStore_Create(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, member("አበበ ቢቂላ", "0911223344", "ኦሮሚያ", "ORO-2025-0001"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.Phone != "+251911223344" {
		t.Errorf("phone not normalized: got %q", created.Phone)
	}
	if created.FullNameCI == "" {
		t.Error("expected FullNameCI to be set")
	}
	if !created.IsActive {
		t.Error("expected new member to be active")
	}
	if created.ProvisionStatus != models.ProvisionPending {
		t.Errorf("provision status: got %q, want %q", created.ProvisionStatus, models.ProvisionPending)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestStore_Create_DuplicatePhone(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, member("አንድ ሰው", "0911000011", "አማራ", "AMH-2025-0001")); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	// Same number in international spelling must still collide.
	_, err := store.Create(ctx, member("ሌላ ሰው", "+251911000011", "አማራ", "AMH-2025-0002"))
	if !errors.Is(err, memberstore.ErrDuplicatePhone) {
		t.Fatalf("expected ErrDuplicatePhone, got %v", err)
	}
}

func TestStore_Create_DuplicateMembershipID(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, member("አንድ ሰው", "0911000021", "ትግራይ", "TIG-2025-0001")); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	_, err := store.Create(ctx, member("ሌላ ሰው", "0911000022", "ትግራይ", "TIG-2025-0001"))
	if !errors.Is(err, memberstore.ErrDuplicateMembershipID) {
		t.Fatalf("expected ErrDuplicateMembershipID, got %v", err)
	}
}

func TestStore_GetByMembershipID(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, member("ሰላም ተስፋዬ", "0911000031", "ሲዳማ", "SID-2025-0007"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.GetByMembershipID(ctx, "sid-2025-0007")
	if err != nil {
		t.Fatalf("GetByMembershipID failed: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("got member %s, want %s", got.ID.Hex(), created.ID.Hex())
	}

	if _, err := store.GetByMembershipID(ctx, "SID-2025-9999"); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Fatalf("expected ErrNoDocuments for unknown ID, got %v", err)
	}
}

func TestStore_ListFilter(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	seed := []models.Member{
		member("አበበ ቢቂላ", "0911100001", "ኦሮሚያ", "ORO-2025-0001"),
		member("ሰላም ተስፋዬ", "0911100002", "አማራ", "AMH-2025-0001"),
		member("ሙሉ አለሙ", "0911100003", "አማራ", "AMH-2025-0002"),
	}
	for _, m := range seed {
		if _, err := store.Create(ctx, m); err != nil {
			t.Fatalf("seed Create failed: %v", err)
		}
	}

	got, err := store.List(ctx, memberstore.Filter{Region: "አማራ", ActiveOnly: true})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("region filter: got %d members, want 2", len(got))
	}

	got, err = store.List(ctx, memberstore.Filter{Query: "ሰላም"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 1 || got[0].MembershipID != "AMH-2025-0001" {
		t.Fatalf("name query: got %v", got)
	}

	n, err := store.Count(ctx, memberstore.Filter{ActiveOnly: true})
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 3 {
		t.Errorf("Count: got %d, want 3", n)
	}
}

func TestStore_DeactivateKeepsMembershipID(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, member("አበበ ቢቂላ", "0911100011", "ኦሮሚያ", "ORO-2025-0010"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.Deactivate(ctx, created.ID); err != nil {
		t.Fatalf("Deactivate failed: %v", err)
	}
	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.IsActive {
		t.Error("expected member to be inactive")
	}
	if got.MembershipID != "ORO-2025-0010" {
		t.Errorf("membership ID changed on deactivate: %q", got.MembershipID)
	}

	if err := store.Reactivate(ctx, created.ID); err != nil {
		t.Fatalf("Reactivate failed: %v", err)
	}
	got, err = store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if !got.IsActive {
		t.Error("expected member to be active again")
	}
}

func TestStore_UpdateProfile_RegionMoveKeepsID(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, member("ሙሉ አለሙ", "0911100021", "አማራ", "AMH-2025-0020"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	upd := memberstore.ProfileUpdate{
		FullName:  "ሙሉ አለሙ",
		Gender:    "female",
		BirthDate: created.BirthDate,
		Region:    "ኦሮሚያ",
		Level:     models.LevelSupporter,
	}
	if err := store.UpdateProfile(ctx, created.ID, upd); err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Region != "ኦሮሚያ" {
		t.Errorf("region: got %q, want %q", got.Region, "ኦሮሚያ")
	}
	if got.Level != models.LevelSupporter {
		t.Errorf("level: got %q, want %q", got.Level, models.LevelSupporter)
	}
	if got.MembershipID != "AMH-2025-0020" {
		t.Errorf("membership ID must not change when the region does: %q", got.MembershipID)
	}
}

func TestStore_UpdateContact_LeavesIdentityAlone(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, member("ሐና በቀለ", "0911100031", "አማራ", "AMH-2025-0030"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	upd := memberstore.ContactUpdate{
		Email:  "Hana@Example.COM",
		Zone:   "ሰሜን ጎንደር",
		Woreda: "ጎንደር ዙሪያ",
		Kebele: "04",
	}
	if err := store.UpdateContact(ctx, created.ID, upd); err != nil {
		t.Fatalf("UpdateContact failed: %v", err)
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Email != "hana@example.com" {
		t.Errorf("email not normalized: %q", got.Email)
	}
	if got.Zone != "ሰሜን ጎንደር" || got.Woreda != "ጎንደር ዙሪያ" || got.Kebele != "04" {
		t.Errorf("address not applied: %+v", got)
	}
	if got.Phone != created.Phone || got.MembershipID != created.MembershipID || got.Region != created.Region {
		t.Errorf("contact update must not touch phone, membership ID or region: %+v", got)
	}
}

func TestStore_HighestIssuedSeq(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ids := []string{"AMH-2025-0001", "AMH-2025-0017", "AMH-2025-0004"}
	for i, id := range ids {
		phone := fmt.Sprintf("09112000%02d", i+1)
		if _, err := store.Create(ctx, member("ሰው", phone, "አማራ", id)); err != nil {
			t.Fatalf("seed Create failed: %v", err)
		}
	}

	highest, malformed, err := store.HighestIssuedSeq(ctx, "AMH", 2025)
	if err != nil {
		t.Fatalf("HighestIssuedSeq failed: %v", err)
	}
	if highest != 17 {
		t.Errorf("highest: got %d, want 17", highest)
	}
	if len(malformed) != 0 {
		t.Errorf("unexpected malformed IDs: %v", malformed)
	}
}
