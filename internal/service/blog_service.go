package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/domain"
	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/repository"
)

var slugStripRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify collapses a title into a url-safe slug.
func Slugify(title string) string {
	slug := slugStripRe.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(slug, "-")
}

type BlogService struct {
	posts  repository.BlogRepository
	logger *slog.Logger
}

func NewBlogService(posts repository.BlogRepository, logger *slog.Logger) *BlogService {
	return &BlogService{posts: posts, logger: logger}
}

func (s *BlogService) CreatePost(ctx context.Context, authorID primitive.ObjectID, title, slug, body string, published bool) (*domain.BlogPost, error) {
	title = strings.TrimSpace(title)
	if title == "" || strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("%w: title and body required", ErrValidation)
	}
	if slug == "" {
		slug = Slugify(title)
	}
	if slug == "" {
		return nil, fmt.Errorf("%w: title does not yield a usable slug", ErrValidation)
	}
	post := &domain.BlogPost{
		Title:     title,
		Slug:      slug,
		Body:      body,
		AuthorID:  authorID,
		Published: published,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "blog post created", "slug", slug, "author_id", authorID.Hex())
	return post, nil
}

func (s *BlogService) UpdatePost(ctx context.Context, post *domain.BlogPost) error {
	if strings.TrimSpace(post.Title) == "" || strings.TrimSpace(post.Body) == "" {
		return fmt.Errorf("%w: title and body required", ErrValidation)
	}
	return s.posts.Update(ctx, post)
}

func (s *BlogService) DeletePost(ctx context.Context, id primitive.ObjectID) error {
	return s.posts.Delete(ctx, id)
}

func (s *BlogService) GetBySlug(ctx context.Context, slug string) (*domain.BlogPost, error) {
	return s.posts.FindBySlug(ctx, slug)
}

func (s *BlogService) ListPublished(ctx context.Context, page repository.PageRequest) (repository.PageResult[domain.BlogPost], error) {
	return s.posts.ListPublished(ctx, page)
}
