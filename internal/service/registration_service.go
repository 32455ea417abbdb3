package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/domain"
	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/repository"
)

// RegistrationService fronts event and team registration. The
// exclusivity and capacity invariants live in the repository's
// transactions; this layer validates input and owns logging.
type RegistrationService struct {
	events repository.EventRepository
	logger *slog.Logger
}

func NewRegistrationService(events repository.EventRepository, logger *slog.Logger) *RegistrationService {
	return &RegistrationService{events: events, logger: logger}
}

func (s *RegistrationService) ListEvents(ctx context.Context) ([]domain.Event, error) {
	return s.events.List(ctx)
}

func (s *RegistrationService) GetEvent(ctx context.Context, id primitive.ObjectID) (*domain.Event, error) {
	return s.events.FindByID(ctx, id)
}

func (s *RegistrationService) CreateEvent(ctx context.Context, event *domain.Event) error {
	if event.Title == "" {
		return fmt.Errorf("%w: title required", ErrValidation)
	}
	if event.MinTeamSize > 0 && event.MaxTeamSize > 0 && event.MinTeamSize > event.MaxTeamSize {
		return fmt.Errorf("%w: min team size exceeds max", ErrValidation)
	}
	return s.events.Create(ctx, event)
}

func (s *RegistrationService) UpdateEvent(ctx context.Context, event *domain.Event) error {
	return s.events.Update(ctx, event)
}

func (s *RegistrationService) DeleteEvent(ctx context.Context, id primitive.ObjectID) error {
	return s.events.Delete(ctx, id)
}

func (s *RegistrationService) RegisterSolo(ctx context.Context, eventID, accountID primitive.ObjectID) error {
	if err := s.events.RegisterSolo(ctx, eventID, accountID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "solo registration",
		"event_id", eventID.Hex(), "account_id", accountID.Hex())
	return nil
}

func (s *RegistrationService) UnregisterSolo(ctx context.Context, eventID, accountID primitive.ObjectID) error {
	return s.events.UnregisterSolo(ctx, eventID, accountID)
}

func (s *RegistrationService) CreateTeam(ctx context.Context, eventID, leaderID primitive.ObjectID, name string) (*domain.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: team name required", ErrValidation)
	}
	team := &domain.Team{Name: name, EventID: eventID, LeaderID: leaderID}
	if err := s.events.CreateTeam(ctx, team); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "team created",
		"event_id", eventID.Hex(), "team_id", team.ID.Hex(), "leader_id", leaderID.Hex())
	return team, nil
}

func (s *RegistrationService) JoinTeam(ctx context.Context, teamID, accountID primitive.ObjectID) error {
	if err := s.events.JoinTeam(ctx, teamID, accountID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "team join", "team_id", teamID.Hex(), "account_id", accountID.Hex())
	return nil
}

// LeaveTeam removes the member; a leaving leader disbands the team.
func (s *RegistrationService) LeaveTeam(ctx context.Context, teamID, accountID primitive.ObjectID) error {
	if err := s.events.LeaveTeam(ctx, teamID, accountID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "team leave", "team_id", teamID.Hex(), "account_id", accountID.Hex())
	return nil
}

func (s *RegistrationService) ListTeams(ctx context.Context, eventID primitive.ObjectID) ([]domain.Team, error) {
	return s.events.ListTeams(ctx, eventID)
}

func (s *RegistrationService) TeamForAccount(ctx context.Context, eventID, accountID primitive.ObjectID) (*domain.Team, error) {
	return s.events.FindTeamForAccount(ctx, eventID, accountID)
}
