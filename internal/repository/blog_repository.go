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

type mongoBlogRepository struct {
	coll *mongo.Collection
}

func NewBlogRepository(db *mongo.Database) BlogRepository {
	return &mongoBlogRepository{coll: db.Collection(database.CollBlog)}
}

func (r *mongoBlogRepository) Create(ctx context.Context, post *domain.BlogPost) error {
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now
	res, err := r.coll.InsertOne(ctx, post)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert post: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		post.ID = oid
	}
	return nil
}

func (r *mongoBlogRepository) Update(ctx context.Context, post *domain.BlogPost) error {
	post.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"title":      post.Title,
		"body":       post.Body,
		"published":  post.Published,
		"updated_at": post.UpdatedAt,
	}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": post.ID}, update)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoBlogRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoBlogRepository) FindBySlug(ctx context.Context, slug string) (*domain.BlogPost, error) {
	var post domain.BlogPost
	if err := r.coll.FindOne(ctx, bson.M{"slug": slug}).Decode(&post); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find post: %w", err)
	}
	return &post, nil
}

func (r *mongoBlogRepository) ListPublished(ctx context.Context, page PageRequest) (PageResult[domain.BlogPost], error) {
	page = normalizePageRequest(page)
	filter := bson.M{"published": true}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return PageResult[domain.BlogPost]{}, fmt.Errorf("count posts: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(page.skip()).
		SetLimit(int64(page.PageSize))
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return PageResult[domain.BlogPost]{}, fmt.Errorf("list posts: %w", err)
	}
	defer cur.Close(ctx)

	var posts []domain.BlogPost
	if err := cur.All(ctx, &posts); err != nil {
		return PageResult[domain.BlogPost]{}, fmt.Errorf("decode posts: %w", err)
	}
	return PageResult[domain.BlogPost]{
		Items:      posts,
		Page:       page.Page,
		PageSize:   page.PageSize,
		Total:      total,
		TotalPages: calcTotalPages(total, page.PageSize),
	}, nil
}
