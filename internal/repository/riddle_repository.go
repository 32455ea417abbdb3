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

type mongoRiddleRepository struct {
	client   *mongo.Client
	riddles  *mongo.Collection
	accounts *mongo.Collection
}

func NewRiddleRepository(client *mongo.Client, db *mongo.Database) RiddleRepository {
	return &mongoRiddleRepository{
		client:   client,
		riddles:  db.Collection(database.CollRiddles),
		accounts: db.Collection(database.CollAccounts),
	}
}

func (r *mongoRiddleRepository) Create(ctx context.Context, riddle *domain.Riddle) error {
	riddle.CreatedAt = time.Now().UTC()
	res, err := r.riddles.InsertOne(ctx, riddle)
	if err != nil {
		return fmt.Errorf("insert riddle: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		riddle.ID = oid
	}
	return nil
}

func (r *mongoRiddleRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Riddle, error) {
	var riddle domain.Riddle
	if err := r.riddles.FindOne(ctx, bson.M{"_id": id}).Decode(&riddle); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find riddle: %w", err)
	}
	return &riddle, nil
}

func (r *mongoRiddleRepository) ListActive(ctx context.Context) ([]domain.Riddle, error) {
	cur, err := r.riddles.Find(ctx, bson.M{"active": true},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list riddles: %w", err)
	}
	defer cur.Close(ctx)
	var riddles []domain.Riddle
	if err := cur.All(ctx, &riddles); err != nil {
		return nil, fmt.Errorf("decode riddles: %w", err)
	}
	return riddles, nil
}

// MarkSolved records the solve and credits the points in one
// transaction. The $ne guard makes a concurrent double-submit lose:
// exactly one request moves the account into solved_by.
func (r *mongoRiddleRepository) MarkSolved(ctx context.Context, riddleID, accountID primitive.ObjectID, points int) error {
	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("%w: start session: %v", ErrTransactionFailed, err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		res, err := r.riddles.UpdateOne(sc,
			bson.M{"_id": riddleID, "active": true, "solved_by": bson.M{"$ne": accountID}},
			bson.M{"$addToSet": bson.M{"solved_by": accountID}})
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 0 {
			return nil, ErrConflict
		}
		_, err = r.accounts.UpdateOne(sc, bson.M{"_id": accountID},
			bson.M{"$inc": bson.M{"score": points}})
		return nil, err
	})
	if err != nil {
		if domainErr(err) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}
	return nil
}
