package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/domain"
)

// AccountRepository persists accounts. Single-document mutations rely
// on mongo's per-document atomicity; there is no application lock.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByHandle(ctx context.Context, handle string) (*domain.Account, error)
	SetRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error
	ClearRefreshToken(ctx context.Context, id primitive.ObjectID) error
	SetPasswordHash(ctx context.Context, id primitive.ObjectID, hash string) error
	SetInstituteEmail(ctx context.Context, id primitive.ObjectID, email string) error
	MarkEmailVerified(ctx context.Context, id primitive.ObjectID) error
	MarkInstituteEmailVerified(ctx context.Context, id primitive.ObjectID) error
	Leaderboard(ctx context.Context, limit int64) ([]domain.LeaderboardEntry, error)
}

// CodeRepository is the one-time-code ledger. Replace enforces the
// single-live-code rule for a (identifier, purpose) pair; FindLive
// treats expired records as absent regardless of the TTL sweeper.
type CodeRepository interface {
	Replace(ctx context.Context, code *domain.OneTimeCode) error
	FindLive(ctx context.Context, identifier, purpose string) (*domain.OneTimeCode, error)
	Delete(ctx context.Context, identifier, purpose string) error
}

// EventRepository owns events, teams, and the registration invariants.
// RegisterSolo, CreateTeam, JoinTeam and LeaveTeam run the exclusivity
// and capacity checks atomically with their mutation inside a
// multi-document transaction.
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	Update(ctx context.Context, event *domain.Event) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Event, error)
	List(ctx context.Context) ([]domain.Event, error)

	RegisterSolo(ctx context.Context, eventID, accountID primitive.ObjectID) error
	UnregisterSolo(ctx context.Context, eventID, accountID primitive.ObjectID) error

	CreateTeam(ctx context.Context, team *domain.Team) error
	JoinTeam(ctx context.Context, teamID, accountID primitive.ObjectID) error
	LeaveTeam(ctx context.Context, teamID, accountID primitive.ObjectID) error
	FindTeamByID(ctx context.Context, id primitive.ObjectID) (*domain.Team, error)
	FindTeamForAccount(ctx context.Context, eventID, accountID primitive.ObjectID) (*domain.Team, error)
	ListTeams(ctx context.Context, eventID primitive.ObjectID) ([]domain.Team, error)
}

// RiddleRepository scores at most once per (riddle, account): the
// solved-by guard and the account score increment share a transaction.
type RiddleRepository interface {
	Create(ctx context.Context, riddle *domain.Riddle) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Riddle, error)
	ListActive(ctx context.Context) ([]domain.Riddle, error)
	MarkSolved(ctx context.Context, riddleID, accountID primitive.ObjectID, points int) error
}

type BlogRepository interface {
	Create(ctx context.Context, post *domain.BlogPost) error
	Update(ctx context.Context, post *domain.BlogPost) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	FindBySlug(ctx context.Context, slug string) (*domain.BlogPost, error)
	ListPublished(ctx context.Context, page PageRequest) (PageResult[domain.BlogPost], error)
}
