// Package sequencestore owns the per-(region code, year) membership-ID
// counters.
//
// Each counter is a single document keyed "{code}-{year}". Next is one
// FindOneAndUpdate with $inc and upsert, so contention is scoped to exactly
// that key: concurrent registrations in different regions or years never
// serialize against each other, and two concurrent calls for the same key can
// never observe the same value.
package sequencestore

import (
	"context"
	"fmt"
	"time"

	"github.com/meskelsoft/partyreg/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("membership_sequences")}
}

func key(code string, year int) string {
	return fmt.Sprintf("%s-%d", code, year)
}

// Next atomically increments and returns the counter for (code, year),
// creating it at 1 on first use.
func (s *Store) Next(ctx context.Context, code string, year int) (int64, error) {
	res := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": key(code, year)},
		bson.M{
			"$inc":         bson.M{"seq": int64(1)},
			"$set":         bson.M{"updated_at": time.Now().UTC()},
			"$setOnInsert": bson.M{"code": code, "year": year},
		},
		options.FindOneAndUpdate().
			SetUpsert(true).
			SetReturnDocument(options.After),
	)

	var doc models.MembershipSequence
	if err := res.Decode(&doc); err != nil {
		return 0, err
	}
	return doc.Seq, nil
}

// Seed moves the counter for (code, year) forward to at least floor. It never
// moves a counter backwards, so seeding is idempotent and safe to repeat on
// every startup.
func (s *Store) Seed(ctx context.Context, code string, year int, floor int64) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": key(code, year)},
		bson.M{
			"$max":         bson.M{"seq": floor},
			"$set":         bson.M{"updated_at": time.Now().UTC()},
			"$setOnInsert": bson.M{"code": code, "year": year},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

// Current returns the counter's present value without advancing it.
// Returns 0 when no allocation has happened yet for (code, year).
func (s *Store) Current(ctx context.Context, code string, year int) (int64, error) {
	var doc models.MembershipSequence
	err := s.c.FindOne(ctx, bson.M{"_id": key(code, year)}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return doc.Seq, nil
}
