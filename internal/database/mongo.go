package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/config"
	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/domain"
)

const (
	CollAccounts = "accounts"
	CollCodes    = "one_time_codes"
	CollEvents   = "events"
	CollTeams    = "teams"
	CollRiddles  = "riddles"
	CollBlog     = "blog_posts"
)

func Connect(ctx context.Context, cfg *config.Config) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, client.Database(cfg.MongoDB), nil
}

// EnsureIndexes creates the unique-key constraints and the TTL index
// the repositories depend on. Idempotent; called once at startup.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ttl := int32(domain.CodeTTL / time.Second)

	specs := map[string][]mongo.IndexModel{
		CollAccounts: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "handle", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "score", Value: -1}}},
		},
		CollCodes: {
			{Keys: bson.D{{Key: "identifier", Value: 1}, {Key: "purpose", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "created_at", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(ttl)},
		},
		CollTeams: {
			{Keys: bson.D{{Key: "name", Value: 1}, {Key: "event_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "event_id", Value: 1}, {Key: "members", Value: 1}}},
		},
		CollBlog: {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}

	for coll, models := range specs {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes for %s: %w", coll, err)
		}
	}
	return nil
}
