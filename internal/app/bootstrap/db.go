// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	mongooptions "go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	accountstore "github.com/meskelsoft/partyreg/internal/app/store/accounts"
	announcementstore "github.com/meskelsoft/partyreg/internal/app/store/announcements"
	meetingstore "github.com/meskelsoft/partyreg/internal/app/store/meetings"
	memberstore "github.com/meskelsoft/partyreg/internal/app/store/members"
	sequencestore "github.com/meskelsoft/partyreg/internal/app/store/sequences"
)

// ConnectDB establishes the MongoDB connection and bundles it into DBDeps.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := mongooptions.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}

	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))
	return DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
	}, nil
}

// EnsureSchema creates indexes and seeds the membership-ID counters.
//
// Counter seeding makes adopting an existing registry safe: each issued
// (code, year) prefix raises its counter to at least the highest sequence
// already on record, so the allocator never re-issues an ID that a legacy
// scheme handed out.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase

	members := memberstore.New(db)
	if err := members.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("member indexes: %w", err)
	}
	if err := accountstore.New(db).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("account indexes: %w", err)
	}
	if err := meetingstore.New(db).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("meeting indexes: %w", err)
	}
	if err := announcementstore.New(db).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("announcement indexes: %w", err)
	}

	seqs := sequencestore.New(db)
	codes, years, err := members.IssuedPrefixes(ctx)
	if err != nil {
		return fmt.Errorf("scan issued prefixes: %w", err)
	}
	for i, code := range codes {
		year := years[i]
		highest, malformed, err := members.HighestIssuedSeq(ctx, code, year)
		if err != nil {
			return fmt.Errorf("scan issued seq for %s-%d: %w", code, year, err)
		}
		for _, id := range malformed {
			logger.Warn("membership id does not parse; skipped during counter seeding",
				zap.String("membership_id", id))
		}
		if err := seqs.Seed(ctx, code, year, highest); err != nil {
			return fmt.Errorf("seed counter %s-%d: %w", code, year, err)
		}
	}
	if len(codes) > 0 {
		logger.Info("membership-id counters seeded", zap.Int("prefixes", len(codes)))
	}

	return nil
}
