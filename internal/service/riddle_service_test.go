package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/domain"
	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/repository"
	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/security"
)

func riddleFixture(answer string, points int, solvedBy ...primitive.ObjectID) (*domain.Riddle, *security.Hasher) {
	hasher := security.NewHasher(4)
	hash, _ := hasher.Hash(normalizeAnswer(answer))
	return &domain.Riddle{
		ID:         primitive.NewObjectID(),
		Title:      "The prisoner's dilemma",
		Question:   "Defect or cooperate?",
		AnswerHash: hash,
		Points:     points,
		Active:     true,
		SolvedBy:   solvedBy,
	}, hasher
}

func TestCreateRiddleHashesAnswer(t *testing.T) {
	var stored *domain.Riddle
	repo := &stubRiddleRepository{createFn: func(riddle *domain.Riddle) error {
		stored = riddle
		return nil
	}}
	svc := NewRiddleService(repo, &stubAccountRepository{}, security.NewHasher(4), noopCache{}, testLogger())

	riddle, err := svc.CreateRiddle(context.Background(), "T", "Q?", "Nash", 10)
	if err != nil {
		t.Fatalf("CreateRiddle: %v", err)
	}
	if stored != riddle {
		t.Fatal("riddle not persisted")
	}
	if stored.AnswerHash == "Nash" || stored.AnswerHash == "nash" {
		t.Fatal("answer stored in plaintext")
	}
	if !stored.Active {
		t.Fatal("new riddles start active")
	}
}

func TestCreateRiddleValidation(t *testing.T) {
	svc := NewRiddleService(&stubRiddleRepository{}, &stubAccountRepository{}, security.NewHasher(4), noopCache{}, testLogger())
	if _, err := svc.CreateRiddle(context.Background(), "T", "Q?", "   ", 10); !errors.Is(err, ErrValidation) {
		t.Fatalf("blank answer: expected ErrValidation, got %v", err)
	}
	if _, err := svc.CreateRiddle(context.Background(), "T", "Q?", "a", 0); !errors.Is(err, ErrValidation) {
		t.Fatalf("zero points: expected ErrValidation, got %v", err)
	}
}

func TestSubmitAnswer(t *testing.T) {
	accountID := primitive.NewObjectID()

	t.Run("correct answer scores once", func(t *testing.T) {
		riddle, hasher := riddleFixture("Mixed Strategy", 25)
		marked := 0
		repo := &stubRiddleRepository{
			findByIDFn: func(primitive.ObjectID) (*domain.Riddle, error) { return riddle, nil },
			markSolvedFn: func(_, _ primitive.ObjectID, points int) error {
				marked++
				if points != 25 {
					t.Fatalf("wrong points credited: %d", points)
				}
				return nil
			},
		}
		svc := NewRiddleService(repo, &stubAccountRepository{}, hasher, noopCache{}, testLogger())

		// normalization: case and spacing do not matter
		points, err := svc.SubmitAnswer(context.Background(), riddle.ID, accountID, "  mixed   STRATEGY ")
		if err != nil {
			t.Fatalf("SubmitAnswer: %v", err)
		}
		if points != 25 || marked != 1 {
			t.Fatalf("expected one credit of 25 points, got points=%d marked=%d", points, marked)
		}
	})

	t.Run("wrong answer", func(t *testing.T) {
		riddle, hasher := riddleFixture("Mixed Strategy", 25)
		repo := &stubRiddleRepository{
			findByIDFn: func(primitive.ObjectID) (*domain.Riddle, error) { return riddle, nil },
		}
		svc := NewRiddleService(repo, &stubAccountRepository{}, hasher, noopCache{}, testLogger())
		if _, err := svc.SubmitAnswer(context.Background(), riddle.ID, accountID, "pure strategy"); !errors.Is(err, ErrWrongAnswer) {
			t.Fatalf("expected ErrWrongAnswer, got %v", err)
		}
	})

	t.Run("already solved", func(t *testing.T) {
		riddle, hasher := riddleFixture("Mixed Strategy", 25, accountID)
		repo := &stubRiddleRepository{
			findByIDFn: func(primitive.ObjectID) (*domain.Riddle, error) { return riddle, nil },
		}
		svc := NewRiddleService(repo, &stubAccountRepository{}, hasher, noopCache{}, testLogger())
		if _, err := svc.SubmitAnswer(context.Background(), riddle.ID, accountID, "mixed strategy"); !errors.Is(err, ErrRiddleAlreadySolved) {
			t.Fatalf("expected ErrRiddleAlreadySolved, got %v", err)
		}
	})

	t.Run("lost race maps conflict", func(t *testing.T) {
		riddle, hasher := riddleFixture("Mixed Strategy", 25)
		repo := &stubRiddleRepository{
			findByIDFn:   func(primitive.ObjectID) (*domain.Riddle, error) { return riddle, nil },
			markSolvedFn: func(_, _ primitive.ObjectID, _ int) error { return repository.ErrConflict },
		}
		svc := NewRiddleService(repo, &stubAccountRepository{}, hasher, noopCache{}, testLogger())
		if _, err := svc.SubmitAnswer(context.Background(), riddle.ID, accountID, "mixed strategy"); !errors.Is(err, ErrRiddleAlreadySolved) {
			t.Fatalf("expected ErrRiddleAlreadySolved on conflict, got %v", err)
		}
	})

	t.Run("inactive riddle", func(t *testing.T) {
		riddle, hasher := riddleFixture("Mixed Strategy", 25)
		riddle.Active = false
		repo := &stubRiddleRepository{
			findByIDFn: func(primitive.ObjectID) (*domain.Riddle, error) { return riddle, nil },
		}
		svc := NewRiddleService(repo, &stubAccountRepository{}, hasher, noopCache{}, testLogger())
		if _, err := svc.SubmitAnswer(context.Background(), riddle.ID, accountID, "mixed strategy"); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound for inactive riddle, got %v", err)
		}
	})
}

// recordingCache counts operations so the read-through and
// invalidation paths are observable.
type recordingCache struct {
	entries     []domain.LeaderboardEntry
	hit         bool
	getErr      error
	sets        int
	invalidates int
}

func (c *recordingCache) Get(context.Context) ([]domain.LeaderboardEntry, bool, error) {
	return c.entries, c.hit, c.getErr
}
func (c *recordingCache) Set(_ context.Context, entries []domain.LeaderboardEntry, _ time.Duration) error {
	c.sets++
	c.entries = entries
	return nil
}
func (c *recordingCache) Invalidate(context.Context) error {
	c.invalidates++
	c.hit = false
	return nil
}

func TestLeaderboardReadThrough(t *testing.T) {
	fromStore := []domain.LeaderboardEntry{{Handle: "alice", Score: 50}}
	reads := 0
	accounts := &stubAccountRepository{leaderboardFn: func(int64) ([]domain.LeaderboardEntry, error) {
		reads++
		return fromStore, nil
	}}
	cache := &recordingCache{}
	svc := NewRiddleService(&stubRiddleRepository{}, accounts, security.NewHasher(4), cache, testLogger())

	got, err := svc.Leaderboard(context.Background())
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if reads != 1 || cache.sets != 1 {
		t.Fatalf("miss must read the store and fill the cache: reads=%d sets=%d", reads, cache.sets)
	}
	if len(got) != 1 || got[0].Handle != "alice" {
		t.Fatalf("unexpected entries: %+v", got)
	}

	cache.hit = true
	if _, err := svc.Leaderboard(context.Background()); err != nil {
		t.Fatal(err)
	}
	if reads != 1 {
		t.Fatalf("hit must not touch the store, reads=%d", reads)
	}
}

func TestLeaderboardCacheFailureDegradesToStore(t *testing.T) {
	accounts := &stubAccountRepository{leaderboardFn: func(int64) ([]domain.LeaderboardEntry, error) {
		return []domain.LeaderboardEntry{{Handle: "bob", Score: 5}}, nil
	}}
	cache := &recordingCache{getErr: errors.New("redis down")}
	svc := NewRiddleService(&stubRiddleRepository{}, accounts, security.NewHasher(4), cache, testLogger())

	got, err := svc.Leaderboard(context.Background())
	if err != nil {
		t.Fatalf("cache failure must not fail the read: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("unexpected entries: %+v", got)
	}
}

func TestSolveInvalidatesLeaderboard(t *testing.T) {
	riddle, hasher := riddleFixture("Backward Induction", 10)
	repo := &stubRiddleRepository{
		findByIDFn:   func(primitive.ObjectID) (*domain.Riddle, error) { return riddle, nil },
		markSolvedFn: func(_, _ primitive.ObjectID, _ int) error { return nil },
	}
	cache := &recordingCache{}
	svc := NewRiddleService(repo, &stubAccountRepository{}, hasher, cache, testLogger())

	if _, err := svc.SubmitAnswer(context.Background(), riddle.ID, primitive.NewObjectID(), "backward induction"); err != nil {
		t.Fatal(err)
	}
	if cache.invalidates != 1 {
		t.Fatalf("expected one invalidation, got %d", cache.invalidates)
	}
}
