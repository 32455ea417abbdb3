package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/database"
	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/domain"
)

type mongoCodeRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewCodeRepository(db *mongo.Database) CodeRepository {
	return &mongoCodeRepository{coll: db.Collection(database.CollCodes), now: time.Now}
}

// Replace upserts the single live code for (identifier, purpose); any
// earlier code for the pair is superseded in the same write.
func (r *mongoCodeRepository) Replace(ctx context.Context, code *domain.OneTimeCode) error {
	code.CreatedAt = r.now().UTC()
	filter := bson.M{"identifier": code.Identifier, "purpose": code.Purpose}
	update := bson.M{"$set": bson.M{
		"code_hash":  code.CodeHash,
		"account_id": code.AccountID,
		"created_at": code.CreatedAt,
	}}
	_, err := r.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert code: %w", err)
	}
	return nil
}

// FindLive filters on created_at as well as the TTL index: the mongo
// sweeper runs roughly once a minute, so an expired document may still
// be physically present. Such a record must read as not-found.
func (r *mongoCodeRepository) FindLive(ctx context.Context, identifier, purpose string) (*domain.OneTimeCode, error) {
	cutoff := r.now().UTC().Add(-domain.CodeTTL)
	filter := bson.M{
		"identifier": identifier,
		"purpose":    purpose,
		"created_at": bson.M{"$gt": cutoff},
	}
	var code domain.OneTimeCode
	if err := r.coll.FindOne(ctx, filter).Decode(&code); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find code: %w", err)
	}
	return &code, nil
}

func (r *mongoCodeRepository) Delete(ctx context.Context, identifier, purpose string) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"identifier": identifier, "purpose": purpose})
	if err != nil {
		return fmt.Errorf("delete code: %w", err)
	}
	return nil
}
