package accountstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/meskelsoft/partyreg/internal/app/system/normalize"
	"github.com/meskelsoft/partyreg/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrDuplicateUsername is returned when an account already exists for the
	// phone number. Registration surfaces this as a duplicate registrant.
	ErrDuplicateUsername = errors.New("an account with this username already exists")

	errNoUsername = errors.New("username is required")
	errNoHash     = errors.New("password hash is required")
	errNoMember   = errors.New("account must belong to a member")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("accounts")}
}

// EnsureIndexes creates the uniqueness constraints for accounts.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_accounts_username"),
		},
		{
			Keys:    bson.D{{Key: "member_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_accounts_member"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Create inserts a new account. The username is the member's normalized
// phone number; the password must arrive pre-hashed.
func (s *Store) Create(ctx context.Context, a models.Account) (models.Account, error) {
	a.ID = primitive.NewObjectID()
	a.Username = normalize.Phone(a.Username)
	a.Email = normalize.Email(a.Email)
	if a.Username == "" {
		return models.Account{}, errNoUsername
	}
	if len(a.PasswordHash) == 0 {
		return models.Account{}, errNoHash
	}
	if a.MemberID.IsZero() {
		return models.Account{}, errNoMember
	}
	if a.Status == "" {
		a.Status = "active"
	}

	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, a); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Account{}, ErrDuplicateUsername
		}
		return models.Account{}, err
	}
	return a, nil
}

// GetByUsername looks up an account by normalized username.
// Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	var a models.Account
	if err := s.c.FindOne(ctx, bson.M{"username": normalize.Phone(username)}).Decode(&a); err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByID loads an account by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Account, error) {
	var a models.Account
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByMemberID loads the account owned by a member, if provisioned.
func (s *Store) GetByMemberID(ctx context.Context, memberID primitive.ObjectID) (*models.Account, error) {
	var a models.Account
	if err := s.c.FindOne(ctx, bson.M{"member_id": memberID}).Decode(&a); err != nil {
		return nil, err
	}
	return &a, nil
}

// UsernameExists reports whether an account with the username already exists.
func (s *Store) UsernameExists(ctx context.Context, username string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"username": normalize.Phone(username)}).Err()
	if err == nil {
		return true, nil
	}
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	return false, err
}

// SetPasswordHash replaces the stored credential hash (operator resend,
// password change at first login).
func (s *Store) SetPasswordHash(ctx context.Context, id primitive.ObjectID, hash []byte) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"password_hash": hash, "updated_at": time.Now().UTC()}},
	)
	return err
}

// SetStatus flips an account between active and disabled.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}},
	)
	return err
}
