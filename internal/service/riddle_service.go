package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/domain"
	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/repository"
	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/security"
)

const leaderboardLimit = 50

// LeaderboardCache is a read-through cache for the score listing. A
// nil-safe implementation may report every Get as a miss.
type LeaderboardCache interface {
	Get(ctx context.Context) ([]domain.LeaderboardEntry, bool, error)
	Set(ctx context.Context, entries []domain.LeaderboardEntry, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

// RiddleService scores riddle answers. Answers are stored hashed like
// credentials; scoring is at most once per (riddle, account).
type RiddleService struct {
	riddles  repository.RiddleRepository
	accounts repository.AccountRepository
	hasher   *security.Hasher
	cache    LeaderboardCache
	cacheTTL time.Duration
	logger   *slog.Logger
}

func NewRiddleService(riddles repository.RiddleRepository, accounts repository.AccountRepository, hasher *security.Hasher, cache LeaderboardCache, logger *slog.Logger) *RiddleService {
	return &RiddleService{
		riddles:  riddles,
		accounts: accounts,
		hasher:   hasher,
		cache:    cache,
		cacheTTL: 30 * time.Second,
		logger:   logger,
	}
}

func normalizeAnswer(answer string) string {
	return strings.ToLower(strings.Join(strings.Fields(answer), " "))
}

func (s *RiddleService) CreateRiddle(ctx context.Context, title, question, answer string, points int) (*domain.Riddle, error) {
	if title == "" || question == "" || normalizeAnswer(answer) == "" {
		return nil, fmt.Errorf("%w: title, question and answer required", ErrValidation)
	}
	if points <= 0 {
		return nil, fmt.Errorf("%w: points must be positive", ErrValidation)
	}
	hash, err := s.hasher.Hash(normalizeAnswer(answer))
	if err != nil {
		return nil, err
	}
	riddle := &domain.Riddle{
		Title:      title,
		Question:   question,
		AnswerHash: hash,
		Points:     points,
		Active:     true,
	}
	if err := s.riddles.Create(ctx, riddle); err != nil {
		return nil, err
	}
	return riddle, nil
}

func (s *RiddleService) ListActive(ctx context.Context) ([]domain.Riddle, error) {
	return s.riddles.ListActive(ctx)
}

// SubmitAnswer checks the candidate against the stored hash and, when
// correct, credits the points exactly once. A concurrent duplicate
// submission loses inside the repository transaction and surfaces as
// ErrRiddleAlreadySolved.
func (s *RiddleService) SubmitAnswer(ctx context.Context, riddleID, accountID primitive.ObjectID, answer string) (int, error) {
	riddle, err := s.riddles.FindByID(ctx, riddleID)
	if err != nil {
		return 0, err
	}
	if !riddle.Active {
		return 0, repository.ErrNotFound
	}
	if riddle.SolvedByAccount(accountID) {
		return 0, ErrRiddleAlreadySolved
	}
	ok, err := s.hasher.Verify(normalizeAnswer(answer), riddle.AnswerHash)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrWrongAnswer
	}
	if err := s.riddles.MarkSolved(ctx, riddleID, accountID, riddle.Points); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return 0, ErrRiddleAlreadySolved
		}
		return 0, err
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "leaderboard cache invalidation failed", "error", err.Error())
	}
	s.logger.InfoContext(ctx, "riddle solved",
		"riddle_id", riddleID.Hex(), "account_id", accountID.Hex(), "points", riddle.Points)
	return riddle.Points, nil
}

// Leaderboard reads through the cache; a cache failure degrades to the
// store, never to an error.
func (s *RiddleService) Leaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	entries, hit, err := s.cache.Get(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "leaderboard cache read failed", "error", err.Error())
	} else if hit {
		return entries, nil
	}
	entries, err = s.accounts.Leaderboard(ctx, leaderboardLimit)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, entries, s.cacheTTL); err != nil {
		s.logger.WarnContext(ctx, "leaderboard cache write failed", "error", err.Error())
	}
	return entries, nil
}
