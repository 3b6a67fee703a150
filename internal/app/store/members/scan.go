package memberstore

import (
	"context"
	"fmt"

	"github.com/meskelsoft/partyreg/internal/app/idalloc"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// HighestIssuedSeq scans already-issued membership IDs for the given
// (code, year) prefix and returns the highest sequence number found, plus the
// IDs that failed to parse. It exists to seed the atomic counters when
// adopting a registry whose IDs were issued by the legacy scan-and-increment
// scheme; the runtime allocation path never scans.
//
// Malformed IDs are reported, not fatal: a bad historical row must not block
// new registrations.
func (s *Store) HighestIssuedSeq(ctx context.Context, code string, year int) (highest int64, malformed []string, err error) {
	prefix := fmt.Sprintf("%s-%d-", code, year)

	cur, err := s.c.Find(ctx,
		bson.M{"membership_id": bson.M{"$regex": "^" + prefix}},
		options.Find().SetProjection(bson.M{"membership_id": 1}),
	)
	if err != nil {
		return 0, nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var row struct {
			MembershipID string `bson:"membership_id"`
		}
		if err := cur.Decode(&row); err != nil {
			continue
		}
		seq, perr := idalloc.ParseSeq(row.MembershipID)
		if perr != nil {
			malformed = append(malformed, row.MembershipID)
			continue
		}
		if seq > highest {
			highest = seq
		}
	}
	return highest, malformed, cur.Err()
}

// IssuedPrefixes returns the distinct (code, year) prefixes present in the
// members collection, so startup can seed every counter that needs it.
func (s *Store) IssuedPrefixes(ctx context.Context) ([]string, []int, error) {
	pipeline := []bson.M{
		{"$project": bson.M{"parts": bson.M{"$split": []string{"$membership_id", "-"}}}},
		{"$match": bson.M{"parts.2": bson.M{"$exists": true}}},
		{"$group": bson.M{"_id": bson.M{
			"code": bson.M{"$arrayElemAt": []interface{}{"$parts", 0}},
			"year": bson.M{"$arrayElemAt": []interface{}{"$parts", 1}},
		}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, nil, err
	}
	defer cur.Close(ctx)

	var codes []string
	var years []int
	for cur.Next(ctx) {
		var row struct {
			ID struct {
				Code string `bson:"code"`
				Year string `bson:"year"`
			} `bson:"_id"`
		}
		if err := cur.Decode(&row); err != nil {
			continue
		}
		var y int
		if _, err := fmt.Sscanf(row.ID.Year, "%d", &y); err != nil || y == 0 {
			continue
		}
		codes = append(codes, row.ID.Code)
		years = append(years, y)
	}
	return codes, years, cur.Err()
}
