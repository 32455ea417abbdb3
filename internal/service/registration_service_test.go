package service

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/domain"
	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/repository"
)

func TestCreateEventValidation(t *testing.T) {
	svc := NewRegistrationService(&stubEventRepository{}, testLogger())

	if err := svc.CreateEvent(context.Background(), &domain.Event{}); !errors.Is(err, ErrValidation) {
		t.Fatalf("missing title: expected ErrValidation, got %v", err)
	}
	bad := &domain.Event{Title: "CTF", MinTeamSize: 4, MaxTeamSize: 2}
	if err := svc.CreateEvent(context.Background(), bad); !errors.Is(err, ErrValidation) {
		t.Fatalf("inverted team sizes: expected ErrValidation, got %v", err)
	}
}

func TestCreateEventDelegates(t *testing.T) {
	var created *domain.Event
	repo := &stubEventRepository{createFn: func(event *domain.Event) error {
		created = event
		return nil
	}}
	svc := NewRegistrationService(repo, testLogger())

	if err := svc.CreateEvent(context.Background(), &domain.Event{Title: "CTF"}); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if created == nil || created.Title != "CTF" {
		t.Fatal("event not passed through to the repository")
	}
}

// The exclusivity and capacity invariants are enforced inside the
// repository's transactions; at this layer we verify the sentinels pass
// through untouched so handlers can map them to statuses.
func TestRegistrationSentinelsPassThrough(t *testing.T) {
	eventID, accountID := primitive.NewObjectID(), primitive.NewObjectID()

	cases := []struct {
		name string
		err  error
	}{
		{"already registered", repository.ErrAlreadyRegistered},
		{"registration closed", repository.ErrRegistrationClosed},
		{"event full", repository.ErrEventFull},
		{"not found", repository.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &stubEventRepository{registerSoloFn: func(_, _ primitive.ObjectID) error {
				return tc.err
			}}
			svc := NewRegistrationService(repo, testLogger())
			if err := svc.RegisterSolo(context.Background(), eventID, accountID); !errors.Is(err, tc.err) {
				t.Fatalf("expected %v, got %v", tc.err, err)
			}
		})
	}
}

func TestCreateTeam(t *testing.T) {
	eventID, leaderID := primitive.NewObjectID(), primitive.NewObjectID()

	t.Run("empty name", func(t *testing.T) {
		svc := NewRegistrationService(&stubEventRepository{}, testLogger())
		if _, err := svc.CreateTeam(context.Background(), eventID, leaderID, "   "); !errors.Is(err, ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("success", func(t *testing.T) {
		repo := &stubEventRepository{createTeamFn: func(team *domain.Team) error {
			team.ID = primitive.NewObjectID()
			return nil
		}}
		svc := NewRegistrationService(repo, testLogger())
		team, err := svc.CreateTeam(context.Background(), eventID, leaderID, "  Nash Equilibrium ")
		if err != nil {
			t.Fatalf("CreateTeam: %v", err)
		}
		if team.Name != "Nash Equilibrium" {
			t.Fatalf("name not trimmed: %q", team.Name)
		}
		if team.EventID != eventID || team.LeaderID != leaderID {
			t.Fatal("team not bound to event and leader")
		}
	})

	t.Run("leader already registered", func(t *testing.T) {
		repo := &stubEventRepository{createTeamFn: func(*domain.Team) error {
			return repository.ErrAlreadyRegistered
		}}
		svc := NewRegistrationService(repo, testLogger())
		if _, err := svc.CreateTeam(context.Background(), eventID, leaderID, "Dupes"); !errors.Is(err, repository.ErrAlreadyRegistered) {
			t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
		}
	})
}

func TestJoinTeamSentinels(t *testing.T) {
	teamID, accountID := primitive.NewObjectID(), primitive.NewObjectID()
	for _, want := range []error{repository.ErrTeamFull, repository.ErrAlreadyRegistered, repository.ErrRegistrationClosed} {
		repo := &stubEventRepository{joinTeamFn: func(_, _ primitive.ObjectID) error { return want }}
		svc := NewRegistrationService(repo, testLogger())
		if err := svc.JoinTeam(context.Background(), teamID, accountID); !errors.Is(err, want) {
			t.Fatalf("expected %v, got %v", want, err)
		}
	}
}

func TestLeaveTeamDelegates(t *testing.T) {
	teamID, memberID := primitive.NewObjectID(), primitive.NewObjectID()
	var gotTeam, gotAccount primitive.ObjectID
	repo := &stubEventRepository{leaveTeamFn: func(t, a primitive.ObjectID) error {
		gotTeam, gotAccount = t, a
		return nil
	}}
	svc := NewRegistrationService(repo, testLogger())

	if err := svc.LeaveTeam(context.Background(), teamID, memberID); err != nil {
		t.Fatalf("LeaveTeam: %v", err)
	}
	if gotTeam != teamID || gotAccount != memberID {
		t.Fatal("wrong identifiers forwarded")
	}
}
