package memberstore

import (
	"context"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/meskelsoft/partyreg/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Filter narrows the staff member list and CSV export.
// Zero values mean "no restriction" except ActiveOnly, which callers set
// explicitly (the staff list and export only ever show active members).
type Filter struct {
	Query      string // prefix match on folded full name, or exact membership ID
	Region     string // registry region spelling; coordinators are locked to theirs
	JoinedFrom time.Time
	JoinedTo   time.Time
	ActiveOnly bool
}

func (f Filter) build() bson.M {
	q := bson.M{}
	if f.ActiveOnly {
		q["is_active"] = true
	}
	if f.Region != "" {
		q["region"] = f.Region
	}
	if f.Query != "" {
		fold := text.Fold(f.Query)
		q["$or"] = []bson.M{
			{"full_name_ci": bson.M{"$gte": fold, "$lt": fold + "￿"}},
			{"membership_id": f.Query},
		}
	}
	if !f.JoinedFrom.IsZero() || !f.JoinedTo.IsZero() {
		rng := bson.M{}
		if !f.JoinedFrom.IsZero() {
			rng["$gte"] = f.JoinedFrom
		}
		if !f.JoinedTo.IsZero() {
			rng["$lte"] = f.JoinedTo
		}
		q["join_date"] = rng
	}
	return q
}

// List returns members matching the filter, sorted by folded name.
func (s *Store) List(ctx context.Context, f Filter) ([]models.Member, error) {
	cur, err := s.c.Find(ctx, f.build(),
		options.Find().SetSort(bson.D{{Key: "full_name_ci", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Member
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the number of members matching the filter.
func (s *Store) Count(ctx context.Context, f Filter) (int64, error) {
	return s.c.CountDocuments(ctx, f.build())
}

// Recent returns the n most recently joined members matching the filter.
func (s *Store) Recent(ctx context.Context, f Filter, n int64) ([]models.Member, error) {
	cur, err := s.c.Find(ctx, f.build(),
		options.Find().SetSort(bson.D{{Key: "join_date", Value: -1}}).SetLimit(n))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Member
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PendingProvisioning lists members whose account provisioning or credential
// delivery never completed, for the operator remediation view.
func (s *Store) PendingProvisioning(ctx context.Context, region string) ([]models.Member, error) {
	q := bson.M{"provision_status": bson.M{"$in": []string{
		models.ProvisionPending, models.ProvisionCredential,
	}}}
	if region != "" {
		q["region"] = region
	}

	cur, err := s.c.Find(ctx, q,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Member
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
