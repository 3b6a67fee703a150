// internal/domain/models/member.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Membership levels.
const (
	LevelFull      = "full"
	LevelSupporter = "supporter"
)

// Provisioning states for the linked login account.
//
//   - pending_account: the member row exists but no account has been
//     provisioned yet (compensation path when the account insert fails
//     after the member insert). Operators can retry from the member view.
//   - credential_pending: the account exists but the credential was never
//     delivered; operators can resend.
//   - provisioned: account exists and the credential was delivered.
const (
	ProvisionPending    = "pending_account"
	ProvisionCredential = "credential_pending"
	Provisioned         = "provisioned"
)

// Member is a registered party member.
//
// MembershipID is assigned exactly once at creation and never recomputed;
// Phone is globally unique and doubles as the username of the linked Account.
type Member struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName   string             `bson:"full_name" json:"full_name"`
	FullNameCI string             `bson:"full_name_ci" json:"full_name_ci"` // lowercase, diacritics-stripped
	Gender     string             `bson:"gender" json:"gender"`             // male | female
	BirthDate  time.Time          `bson:"birth_date" json:"birth_date"`
	Phone      string             `bson:"phone" json:"phone"` // normalized E.164 where possible
	Email      string             `bson:"email,omitempty" json:"email,omitempty"`

	// Address
	Region string `bson:"region" json:"region"` // registry spelling, Amharic or English
	Zone   string `bson:"zone,omitempty" json:"zone,omitempty"`
	Woreda string `bson:"woreda,omitempty" json:"woreda,omitempty"`
	Kebele string `bson:"kebele,omitempty" json:"kebele,omitempty"`

	// Party fields
	MembershipID string    `bson:"membership_id" json:"membership_id"` // {code}-{year}-{seq}, immutable
	Level        string    `bson:"level" json:"level"`                 // full | supporter
	PartyRole    string    `bson:"party_role,omitempty" json:"party_role,omitempty"`
	JoinDate     time.Time `bson:"join_date" json:"join_date"`

	// Other
	EducationLevel string `bson:"education_level,omitempty" json:"education_level,omitempty"`
	Profession     string `bson:"profession,omitempty" json:"profession,omitempty"`

	// System
	AccountID       *primitive.ObjectID `bson:"account_id,omitempty" json:"account_id,omitempty"`
	ProvisionStatus string              `bson:"provision_status" json:"provision_status"`
	IsActive        bool                `bson:"is_active" json:"is_active"`
	CreatedAt       time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time           `bson:"updated_at" json:"updated_at"`
}
