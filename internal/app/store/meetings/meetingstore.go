// Package meetingstore persists meetings and per-member attendance.
package meetingstore

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
	// ErrAlreadyMarked is returned when a member's attendance for a meeting
	// was already recorded.
	ErrAlreadyMarked = errors.New("attendance already recorded for this member and meeting")

	errNoTitle = errors.New("meeting title is required")
	errNoDate  = errors.New("meeting date is required")
)

type Store struct {
	meetings   *mongo.Collection
	attendance *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		meetings:   db.Collection("meetings"),
		attendance: db.Collection("attendance"),
	}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	if _, err := s.meetings.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "meeting_date", Value: -1}},
		Options: options.Index().SetName("idx_meetings_date"),
	}); err != nil {
		return err
	}
	_, err := s.attendance.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "member_id", Value: 1}, {Key: "meeting_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_attendance_member_meeting"),
	})
	return err
}

// Create inserts a meeting.
func (s *Store) Create(ctx context.Context, m models.Meeting) (models.Meeting, error) {
	m.ID = primitive.NewObjectID()
	m.Title = normalize.Name(m.Title)

	if m.Title == "" {
		return models.Meeting{}, errNoTitle
	}
	if m.MeetingDate.IsZero() {
		return models.Meeting{}, errNoDate
	}

	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	if _, err := s.meetings.InsertOne(ctx, m); err != nil {
		return models.Meeting{}, err
	}
	return m, nil
}

// GetByID loads a meeting by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Meeting, error) {
	var m models.Meeting
	if err := s.meetings.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

// List returns meetings newest first.
func (s *Store) List(ctx context.Context) ([]models.Meeting, error) {
	cur, err := s.meetings.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "meeting_date", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Meeting
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Upcoming returns meetings on or after the given time, soonest first.
func (s *Store) Upcoming(ctx context.Context, from time.Time) ([]models.Meeting, error) {
	cur, err := s.meetings.Find(ctx,
		bson.M{"meeting_date": bson.M{"$gte": from}},
		options.Find().SetSort(bson.D{{Key: "meeting_date", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Meeting
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update replaces the editable fields of a meeting.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, m models.Meeting) error {
	res, err := s.meetings.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"title":        normalize.Name(m.Title),
		"description":  m.Description,
		"meeting_date": m.MeetingDate,
		"location":     m.Location,
		"updated_at":   time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes a meeting and its attendance rows.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.attendance.DeleteMany(ctx, bson.M{"meeting_id": id}); err != nil {
		return err
	}
	res, err := s.meetings.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// MarkAttendance records that a member attended a meeting. Recording twice
// returns ErrAlreadyMarked; the first row stands.
func (s *Store) MarkAttendance(ctx context.Context, memberID, meetingID primitive.ObjectID) (models.Attendance, error) {
	a := models.Attendance{
		ID:         primitive.NewObjectID(),
		MemberID:   memberID,
		MeetingID:  meetingID,
		AttendedAt: time.Now().UTC(),
	}
	if _, err := s.attendance.InsertOne(ctx, a); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Attendance{}, ErrAlreadyMarked
		}
		return models.Attendance{}, err
	}
	return a, nil
}

// UnmarkAttendance removes a member's attendance row for a meeting.
func (s *Store) UnmarkAttendance(ctx context.Context, memberID, meetingID primitive.ObjectID) error {
	_, err := s.attendance.DeleteOne(ctx, bson.M{"member_id": memberID, "meeting_id": meetingID})
	return err
}

// Attendees returns the member ids recorded for a meeting.
func (s *Store) Attendees(ctx context.Context, meetingID primitive.ObjectID) ([]models.Attendance, error) {
	cur, err := s.attendance.Find(ctx, bson.M{"meeting_id": meetingID},
		options.Find().SetSort(bson.D{{Key: "attended_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Attendance
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AttendanceCount returns how many members attended a meeting.
func (s *Store) AttendanceCount(ctx context.Context, meetingID primitive.ObjectID) (int64, error) {
	return s.attendance.CountDocuments(ctx, bson.M{"meeting_id": meetingID})
}

// MemberAttendance returns the meeting ids a member attended.
func (s *Store) MemberAttendance(ctx context.Context, memberID primitive.ObjectID) ([]models.Attendance, error) {
	cur, err := s.attendance.Find(ctx, bson.M{"member_id": memberID},
		options.Find().SetSort(bson.D{{Key: "attended_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Attendance
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
