package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/meskelsoft/partyreg/internal/domain/models"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateMember inserts an active member with the given name, phone,
// region and membership ID. Other fields get serviceable defaults.
func (f *Fixtures) CreateMember(ctx context.Context, fullName, phone, region, membershipID string) models.Member {
	f.t.Helper()

	now := time.Now().UTC()
	m := models.Member{
		ID:              primitive.NewObjectID(),
		FullName:        fullName,
		FullNameCI:      text.Fold(fullName),
		Gender:          "male",
		BirthDate:       time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		Phone:           phone,
		Region:          region,
		MembershipID:    membershipID,
		Level:           models.LevelFull,
		JoinDate:        now,
		ProvisionStatus: models.ProvisionPending,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if _, err := f.db.Collection("members").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test member: %v", err)
	}
	return m
}

// CreateAccount inserts an active account with a bcrypt hash of the
// given password and links it to the member when memberID is non-zero.
func (f *Fixtures) CreateAccount(ctx context.Context, username, password string, memberID primitive.ObjectID) models.Account {
	f.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("failed to hash test password: %v", err)
	}

	now := time.Now().UTC()
	a := models.Account{
		ID:           primitive.NewObjectID(),
		Username:     username,
		PasswordHash: hash,
		MemberID:     memberID,
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := f.db.Collection("accounts").InsertOne(ctx, a); err != nil {
		f.t.Fatalf("failed to create test account: %v", err)
	}

	if !memberID.IsZero() {
		_, err := f.db.Collection("members").UpdateOne(ctx,
			bson.M{"_id": memberID},
			bson.M{"$set": bson.M{
				"account_id":       a.ID,
				"provision_status": models.Provisioned,
			}},
		)
		if err != nil {
			f.t.Fatalf("failed to link test account: %v", err)
		}
	}
	return a
}

// CreateMeeting inserts a meeting at the given time.
func (f *Fixtures) CreateMeeting(ctx context.Context, title string, when time.Time) models.Meeting {
	f.t.Helper()

	now := time.Now().UTC()
	m := models.Meeting{
		ID:          primitive.NewObjectID(),
		Title:       title,
		MeetingDate: when,
		Location:    "Test Hall",
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := f.db.Collection("meetings").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test meeting: %v", err)
	}
	return m
}

// CreateAnnouncement inserts an announcement.
func (f *Fixtures) CreateAnnouncement(ctx context.Context, title, content string) models.Announcement {
	f.t.Helper()

	now := time.Now().UTC()
	a := models.Announcement{
		ID:        primitive.NewObjectID(),
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("announcements").InsertOne(ctx, a); err != nil {
		f.t.Fatalf("failed to create test announcement: %v", err)
	}
	return a
}
