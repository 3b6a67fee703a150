// internal/domain/models/meeting.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Meeting is a party meeting; attendees are tracked through Attendance rows.
type Meeting struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Title       string              `bson:"title" json:"title"`
	Description string              `bson:"description,omitempty" json:"description,omitempty"`
	MeetingDate time.Time           `bson:"meeting_date" json:"meeting_date"`
	Location    string              `bson:"location" json:"location"`
	CreatedBy   *primitive.ObjectID `bson:"created_by,omitempty" json:"created_by,omitempty"`
	CreatedAt   time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time           `bson:"updated_at" json:"updated_at"`
}

// Attendance joins a member to a meeting. (member_id, meeting_id) is unique.
type Attendance struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MemberID   primitive.ObjectID `bson:"member_id" json:"member_id"`
	MeetingID  primitive.ObjectID `bson:"meeting_id" json:"meeting_id"`
	AttendedAt time.Time          `bson:"attended_at" json:"attended_at"`
}
