package memberstore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
)

// CountRow is one bucket of a dashboard aggregate.
type CountRow struct {
	Key   string `bson:"_id"`
	Count int64  `bson:"count"`
}

// YearRow is one joins-per-year bucket.
type YearRow struct {
	Year  int   `bson:"_id"`
	Count int64 `bson:"count"`
}

func activeMatch(region string) bson.M {
	m := bson.M{"is_active": true}
	if region != "" {
		m["region"] = region
	}
	return m
}

// CountByGender groups active members by gender. Empty region means all
// regions; coordinators pass theirs.
func (s *Store) CountByGender(ctx context.Context, region string) ([]CountRow, error) {
	return s.countBy(ctx, "$gender", region)
}

// CountByRegion groups active members by region, largest first.
func (s *Store) CountByRegion(ctx context.Context, region string) ([]CountRow, error) {
	return s.countBy(ctx, "$region", region)
}

func (s *Store) countBy(ctx context.Context, field, region string) ([]CountRow, error) {
	pipeline := []bson.M{
		{"$match": activeMatch(region)},
		{"$group": bson.M{"_id": field, "count": bson.M{"$sum": 1}}},
		{"$sort": bson.M{"count": -1}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []CountRow
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// CountByJoinYear groups active members by the year they joined, ascending.
func (s *Store) CountByJoinYear(ctx context.Context, region string) ([]YearRow, error) {
	pipeline := []bson.M{
		{"$match": activeMatch(region)},
		{"$group": bson.M{
			"_id":   bson.M{"$year": "$join_date"},
			"count": bson.M{"$sum": 1},
		}},
		{"$sort": bson.M{"_id": 1}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []YearRow
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
