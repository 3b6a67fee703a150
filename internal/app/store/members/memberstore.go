package memberstore

import (
	"context"
	"errors"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/meskelsoft/partyreg/internal/app/system/normalize"
	"github.com/meskelsoft/partyreg/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrDuplicatePhone is returned when the phone number is already registered.
	ErrDuplicatePhone = errors.New("a member with this phone number already exists")
	// ErrDuplicateEmail is returned when the email is already registered.
	ErrDuplicateEmail = errors.New("a member with this email already exists")
	// ErrDuplicateMembershipID is returned when the allocated membership ID
	// collided with one issued concurrently. Callers re-allocate and retry.
	ErrDuplicateMembershipID = errors.New("membership id already issued")

	errNoName   = errors.New("full name is required")
	errNoPhone  = errors.New("phone number is required")
	errNoID     = errors.New("membership id is required")
	errBadLevel = errors.New(`membership level must be "full"|"supporter"`)
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("members")}
}

// EnsureIndexes creates the uniqueness constraints the registration flow
// depends on. The unique membership_id index is what turns an allocation race
// into a retryable insert conflict instead of a silent duplicate.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "phone", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_members_phone"),
		},
		{
			Keys:    bson.D{{Key: "membership_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_members_membership_id"),
		},
		{
			Keys: bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_members_email").
				SetPartialFilterExpression(bson.M{"email": bson.M{"$type": "string"}}),
		},
		{
			Keys:    bson.D{{Key: "region", Value: 1}, {Key: "join_date", Value: -1}},
			Options: options.Index().SetName("idx_members_region_join"),
		},
		{
			Keys:    bson.D{{Key: "full_name_ci", Value: 1}},
			Options: options.Index().SetName("idx_members_name"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Create inserts a new member after normalizing and validating fields.
// The membership ID must already be allocated; it is never generated here.
func (s *Store) Create(ctx context.Context, m models.Member) (models.Member, error) {
	m.ID = primitive.NewObjectID()
	m.FullName = normalize.Name(m.FullName)
	m.FullNameCI = text.Fold(m.FullName)
	m.Phone = normalize.Phone(m.Phone)
	m.Email = normalize.Email(m.Email)

	if m.FullName == "" {
		return models.Member{}, errNoName
	}
	if m.Phone == "" {
		return models.Member{}, errNoPhone
	}
	if m.MembershipID == "" {
		return models.Member{}, errNoID
	}
	switch m.Level {
	case models.LevelFull, models.LevelSupporter:
	default:
		return models.Member{}, errBadLevel
	}
	if m.ProvisionStatus == "" {
		m.ProvisionStatus = models.ProvisionPending
	}

	now := time.Now().UTC()
	if m.JoinDate.IsZero() {
		m.JoinDate = now
	}
	m.IsActive = true
	m.CreatedAt = now
	m.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, m); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Member{}, dupError(err)
		}
		return models.Member{}, err
	}
	return m, nil
}

// dupError maps a duplicate-key error to the sentinel for the violated index.
func dupError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "membership_id"):
		return ErrDuplicateMembershipID
	case strings.Contains(msg, "email"):
		return ErrDuplicateEmail
	default:
		return ErrDuplicatePhone
	}
}

// GetByID loads a member by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Member, error) {
	var m models.Member
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

// GetByPhone looks up a member by normalized phone number.
// Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByPhone(ctx context.Context, phone string) (*models.Member, error) {
	var m models.Member
	if err := s.c.FindOne(ctx, bson.M{"phone": normalize.Phone(phone)}).Decode(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

// GetByMembershipID looks up a member by their issued membership ID
// (case-insensitive on the region code). Returns mongo.ErrNoDocuments
// if no member holds that ID.
func (s *Store) GetByMembershipID(ctx context.Context, membershipID string) (*models.Member, error) {
	var m models.Member
	id := strings.ToUpper(strings.TrimSpace(membershipID))
	if err := s.c.FindOne(ctx, bson.M{"membership_id": id}).Decode(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

// GetByAccountID loads the member owning the given account.
func (s *Store) GetByAccountID(ctx context.Context, accountID primitive.ObjectID) (*models.Member, error) {
	var m models.Member
	if err := s.c.FindOne(ctx, bson.M{"account_id": accountID}).Decode(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

// LinkAccount records the one-to-one account link and the provisioning
// outcome. MembershipID and phone are deliberately not touchable here.
func (s *Store) LinkAccount(ctx context.Context, memberID, accountID primitive.ObjectID, provisionStatus string) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": memberID},
		bson.M{"$set": bson.M{
			"account_id":       accountID,
			"provision_status": provisionStatus,
			"updated_at":       time.Now().UTC(),
		}},
	)
	return err
}

// SetProvisionStatus updates only the provisioning state flag.
func (s *Store) SetProvisionStatus(ctx context.Context, memberID primitive.ObjectID, provisionStatus string) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": memberID},
		bson.M{"$set": bson.M{
			"provision_status": provisionStatus,
			"updated_at":       time.Now().UTC(),
		}},
	)
	return err
}

// ProfileUpdate holds the member fields staff can edit after registration.
// MembershipID, phone, and join date stay fixed.
type ProfileUpdate struct {
	FullName       string
	Email          string
	Gender         string
	BirthDate      time.Time
	Region         string // moving regions never reissues the membership ID
	Zone           string
	Woreda         string
	Kebele         string
	Level          string
	PartyRole      string
	EducationLevel string
	Profession     string
}

// UpdateProfile applies the editable profile fields.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) error {
	name := normalize.Name(upd.FullName)
	switch upd.Level {
	case models.LevelFull, models.LevelSupporter:
	default:
		return errBadLevel
	}
	set := bson.M{
		"full_name":       name,
		"full_name_ci":    text.Fold(name),
		"email":           normalize.Email(upd.Email),
		"gender":          upd.Gender,
		"birth_date":      upd.BirthDate,
		"region":          upd.Region,
		"level":           upd.Level,
		"zone":            upd.Zone,
		"woreda":          upd.Woreda,
		"kebele":          upd.Kebele,
		"party_role":      upd.PartyRole,
		"education_level": upd.EducationLevel,
		"profession":      upd.Profession,
		"updated_at":      time.Now().UTC(),
	}

	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil && wafflemongo.IsDup(err) {
		return ErrDuplicateEmail
	}
	return err
}

// ContactUpdate holds the subset of fields a member may change about
// themselves: contact details and address, nothing that feeds the
// membership record.
type ContactUpdate struct {
	Email          string
	Zone           string
	Woreda         string
	Kebele         string
	EducationLevel string
	Profession     string
}

// UpdateContact applies a member's own edits.
func (s *Store) UpdateContact(ctx context.Context, id primitive.ObjectID, upd ContactUpdate) error {
	set := bson.M{
		"email":           normalize.Email(upd.Email),
		"zone":            upd.Zone,
		"woreda":          upd.Woreda,
		"kebele":          upd.Kebele,
		"education_level": upd.EducationLevel,
		"profession":      upd.Profession,
		"updated_at":      time.Now().UTC(),
	}

	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil && wafflemongo.IsDup(err) {
		return ErrDuplicateEmail
	}
	return err
}

// Deactivate soft-deletes a member. Members are never hard-deleted.
func (s *Store) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_active": false, "updated_at": time.Now().UTC()}},
	)
	return err
}

// Reactivate reverses a soft-delete.
func (s *Store) Reactivate(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_active": true, "updated_at": time.Now().UTC()}},
	)
	return err
}
