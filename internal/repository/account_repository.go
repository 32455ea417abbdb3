package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/database"
	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/domain"
)

type mongoAccountRepository struct {
	coll *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) AccountRepository {
	return &mongoAccountRepository{coll: db.Collection(database.CollAccounts)}
}

func isDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}

func (r *mongoAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now
	res, err := r.coll.InsertOne(ctx, account)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert account: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		account.ID = oid
	}
	return nil
}

func (r *mongoAccountRepository) findOne(ctx context.Context, filter bson.M) (*domain.Account, error) {
	var a domain.Account
	if err := r.coll.FindOne(ctx, filter).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return &a, nil
}

func (r *mongoAccountRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoAccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *mongoAccountRepository) FindByHandle(ctx context.Context, handle string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"handle": handle})
}

func (r *mongoAccountRepository) update(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	set, _ := update["$set"].(bson.M)
	if set == nil {
		set = bson.M{}
		update["$set"] = set
	}
	set["updated_at"] = time.Now().UTC()
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoAccountRepository) SetRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error {
	return r.update(ctx, id, bson.M{"$set": bson.M{"refresh_token": token}})
}

func (r *mongoAccountRepository) ClearRefreshToken(ctx context.Context, id primitive.ObjectID) error {
	return r.update(ctx, id, bson.M{"$unset": bson.M{"refresh_token": ""}})
}

func (r *mongoAccountRepository) SetPasswordHash(ctx context.Context, id primitive.ObjectID, hash string) error {
	return r.update(ctx, id, bson.M{"$set": bson.M{"password_hash": hash}})
}

func (r *mongoAccountRepository) SetInstituteEmail(ctx context.Context, id primitive.ObjectID, email string) error {
	return r.update(ctx, id, bson.M{"$set": bson.M{"institute_email": email, "institute_email_verified": false}})
}

func (r *mongoAccountRepository) MarkEmailVerified(ctx context.Context, id primitive.ObjectID) error {
	return r.update(ctx, id, bson.M{"$set": bson.M{"email_verified": true}})
}

func (r *mongoAccountRepository) MarkInstituteEmailVerified(ctx context.Context, id primitive.ObjectID) error {
	return r.update(ctx, id, bson.M{"$set": bson.M{"institute_email_verified": true}})
}

func (r *mongoAccountRepository) Leaderboard(ctx context.Context, limit int64) ([]domain.LeaderboardEntry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "score", Value: -1}, {Key: "handle", Value: 1}}).
		SetLimit(limit).
		SetProjection(bson.M{"handle": 1, "name": 1, "score": 1})
	cur, err := r.coll.Find(ctx, bson.M{"score": bson.M{"$gt": 0}}, opts)
	if err != nil {
		return nil, fmt.Errorf("leaderboard query: %w", err)
	}
	defer cur.Close(ctx)

	var entries []domain.LeaderboardEntry
	if err := cur.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("leaderboard decode: %w", err)
	}
	return entries, nil
}
