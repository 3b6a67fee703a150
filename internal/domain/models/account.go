// internal/domain/models/account.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Account is a login credential owned by exactly one Member.
//
// Username is the member's normalized phone number. PasswordHash is a bcrypt
// hash; the cleartext secret exists only inside the registration result and
// the outbound notification.
type Account struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username string             `bson:"username" json:"username"`
	Email    string             `bson:"email,omitempty" json:"email,omitempty"`

	PasswordHash []byte `bson:"password_hash" json:"-"`

	MemberID primitive.ObjectID `bson:"member_id" json:"member_id"`

	// Role flags
	IsStaff           bool   `bson:"is_staff" json:"is_staff"`
	IsSuperuser       bool   `bson:"is_superuser" json:"is_superuser"`
	IsCoordinator     bool   `bson:"is_coordinator" json:"is_coordinator"`
	CoordinatorRegion string `bson:"coordinator_region,omitempty" json:"coordinator_region,omitempty"`

	Status    string    `bson:"status" json:"status"` // active | disabled
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Role derives the session role string used by the auth middleware.
func (a Account) Role() string {
	switch {
	case a.IsSuperuser:
		return "admin"
	case a.IsCoordinator:
		return "coordinator"
	case a.IsStaff:
		return "staff"
	default:
		return "member"
	}
}

// MembershipSequence is one per-(region code, year) counter document.
// Seq is only ever moved forward, atomically, by the sequences store.
type MembershipSequence struct {
	ID        string    `bson:"_id"` // "{code}-{year}", e.g. "AMH-2025"
	Code      string    `bson:"code"`
	Year      int       `bson:"year"`
	Seq       int64     `bson:"seq"`
	UpdatedAt time.Time `bson:"updated_at"`
}
