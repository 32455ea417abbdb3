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

// mongoEventRepository spans the events, teams and accounts collections
// because the registration invariants cut across all three. Every
// mutating operation below that touches more than one document runs in
// a single multi-document transaction.
type mongoEventRepository struct {
	client   *mongo.Client
	events   *mongo.Collection
	teams    *mongo.Collection
	accounts *mongo.Collection
}

func NewEventRepository(client *mongo.Client, db *mongo.Database) EventRepository {
	return &mongoEventRepository{
		client:   client,
		events:   db.Collection(database.CollEvents),
		teams:    db.Collection(database.CollTeams),
		accounts: db.Collection(database.CollAccounts),
	}
}

// domainErr reports whether err is one of the sentinels that must reach
// the caller unchanged rather than being folded into ErrTransactionFailed.
func domainErr(err error) bool {
	for _, sentinel := range []error{
		ErrNotFound, ErrConflict, ErrAlreadyRegistered,
		ErrRegistrationClosed, ErrEventFull, ErrTeamFull,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func (r *mongoEventRepository) runTx(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("%w: start session: %v", ErrTransactionFailed, err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil {
		if domainErr(err) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}
	return nil
}

func (r *mongoEventRepository) Create(ctx context.Context, event *domain.Event) error {
	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now
	res, err := r.events.InsertOne(ctx, event)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		event.ID = oid
	}
	return nil
}

func (r *mongoEventRepository) Update(ctx context.Context, event *domain.Event) error {
	event.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"title":                  event.Title,
		"description":            event.Description,
		"starts_at":              event.StartsAt,
		"ends_at":                event.EndsAt,
		"registration_open":      event.RegistrationOpen,
		"team_registration_open": event.TeamRegistrationOpen,
		"min_team_size":          event.MinTeamSize,
		"max_team_size":          event.MaxTeamSize,
		"max_participants":       event.MaxParticipants,
		"max_teams":              event.MaxTeams,
		"updated_at":             event.UpdatedAt,
	}}
	res, err := r.events.UpdateOne(ctx, bson.M{"_id": event.ID}, update)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoEventRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.runTx(ctx, func(sc mongo.SessionContext) error {
		res, err := r.events.DeleteOne(sc, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if res.DeletedCount == 0 {
			return ErrNotFound
		}
		if _, err := r.teams.DeleteMany(sc, bson.M{"event_id": id}); err != nil {
			return err
		}
		_, err = r.accounts.UpdateMany(sc, bson.M{"registered_events": id},
			bson.M{"$pull": bson.M{"registered_events": id}})
		return err
	})
}

func (r *mongoEventRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Event, error) {
	return r.findEvent(ctx, id)
}

func (r *mongoEventRepository) findEvent(ctx context.Context, id primitive.ObjectID) (*domain.Event, error) {
	var ev domain.Event
	if err := r.events.FindOne(ctx, bson.M{"_id": id}).Decode(&ev); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find event: %w", err)
	}
	return &ev, nil
}

func (r *mongoEventRepository) List(ctx context.Context) ([]domain.Event, error) {
	cur, err := r.events.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "starts_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer cur.Close(ctx)
	var events []domain.Event
	if err := cur.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	return events, nil
}

// teamMemberCount totals members across all teams of an event, for the
// MaxParticipants check (team members count as participants).
func (r *mongoEventRepository) teamMemberCount(ctx context.Context, eventID primitive.ObjectID) (int, error) {
	cur, err := r.teams.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"event_id": eventID}}},
		{{Key: "$project", Value: bson.M{"n": bson.M{"$size": "$members"}}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$n"}}}},
	})
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)
	var out []struct {
		Total int `bson:"total"`
	}
	if err := cur.All(ctx, &out); err != nil {
		return 0, err
	}
	if len(out) == 0 {
		return 0, nil
	}
	return out[0].Total, nil
}

// registeredAnywhere reports whether the account already holds a solo
// or team registration for the event.
func (r *mongoEventRepository) registeredAnywhere(ctx context.Context, ev *domain.Event, accountID primitive.ObjectID) (bool, error) {
	if ev.HasSoloRegistrant(accountID) {
		return true, nil
	}
	n, err := r.teams.CountDocuments(ctx, bson.M{"event_id": ev.ID, "members": accountID})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *mongoEventRepository) RegisterSolo(ctx context.Context, eventID, accountID primitive.ObjectID) error {
	return r.runTx(ctx, func(sc mongo.SessionContext) error {
		ev, err := r.findEvent(sc, eventID)
		if err != nil {
			return err
		}
		members, err := r.teamMemberCount(sc, eventID)
		if err != nil {
			return err
		}
		if err := soloRegisterGuard(ev, members); err != nil {
			return err
		}
		taken, err := r.registeredAnywhere(sc, ev, accountID)
		if err != nil {
			return err
		}
		if taken {
			return ErrAlreadyRegistered
		}

		// The $ne guard makes the check-then-push atomic even against a
		// request racing outside this transaction's snapshot.
		res, err := r.events.UpdateOne(sc,
			bson.M{"_id": eventID, "registration_open": true, "solo_registrants": bson.M{"$ne": accountID}},
			bson.M{"$addToSet": bson.M{"solo_registrants": accountID}})
		if err != nil {
			return err
		}
		if res.ModifiedCount == 0 {
			return ErrAlreadyRegistered
		}
		_, err = r.accounts.UpdateOne(sc, bson.M{"_id": accountID},
			bson.M{"$addToSet": bson.M{"registered_events": eventID}})
		return err
	})
}

func (r *mongoEventRepository) UnregisterSolo(ctx context.Context, eventID, accountID primitive.ObjectID) error {
	return r.runTx(ctx, func(sc mongo.SessionContext) error {
		res, err := r.events.UpdateOne(sc, bson.M{"_id": eventID},
			bson.M{"$pull": bson.M{"solo_registrants": accountID}})
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return ErrNotFound
		}
		if res.ModifiedCount == 0 {
			return ErrNotFound
		}
		_, err = r.accounts.UpdateOne(sc, bson.M{"_id": accountID},
			bson.M{"$pull": bson.M{"registered_events": eventID}})
		return err
	})
}

func (r *mongoEventRepository) CreateTeam(ctx context.Context, team *domain.Team) error {
	return r.runTx(ctx, func(sc mongo.SessionContext) error {
		ev, err := r.findEvent(sc, team.EventID)
		if err != nil {
			return err
		}
		members, err := r.teamMemberCount(sc, ev.ID)
		if err != nil {
			return err
		}
		if err := teamCreateGuard(ev, members); err != nil {
			return err
		}
		taken, err := r.registeredAnywhere(sc, ev, team.LeaderID)
		if err != nil {
			return err
		}
		if taken {
			return ErrAlreadyRegistered
		}

		team.Members = []primitive.ObjectID{team.LeaderID}
		team.CreatedAt = time.Now().UTC()
		res, err := r.teams.InsertOne(sc, team)
		if err != nil {
			if isDuplicateKey(err) {
				return ErrConflict
			}
			return err
		}
		if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
			team.ID = oid
		}
		if _, err := r.events.UpdateOne(sc, bson.M{"_id": team.EventID},
			bson.M{"$addToSet": bson.M{"teams": team.ID}}); err != nil {
			return err
		}
		_, err = r.accounts.UpdateOne(sc, bson.M{"_id": team.LeaderID},
			bson.M{"$addToSet": bson.M{"registered_events": team.EventID}})
		return err
	})
}

func (r *mongoEventRepository) JoinTeam(ctx context.Context, teamID, accountID primitive.ObjectID) error {
	return r.runTx(ctx, func(sc mongo.SessionContext) error {
		team, err := r.findTeam(sc, teamID)
		if err != nil {
			return err
		}
		ev, err := r.findEvent(sc, team.EventID)
		if err != nil {
			return err
		}
		members, err := r.teamMemberCount(sc, ev.ID)
		if err != nil {
			return err
		}
		if err := teamJoinGuard(ev, team, members); err != nil {
			return err
		}
		taken, err := r.registeredAnywhere(sc, ev, accountID)
		if err != nil {
			return err
		}
		if taken {
			return ErrAlreadyRegistered
		}

		res, err := r.teams.UpdateOne(sc,
			bson.M{"_id": teamID, "members": bson.M{"$ne": accountID}},
			bson.M{"$push": bson.M{"members": accountID}})
		if err != nil {
			return err
		}
		if res.ModifiedCount == 0 {
			return ErrAlreadyRegistered
		}
		_, err = r.accounts.UpdateOne(sc, bson.M{"_id": accountID},
			bson.M{"$addToSet": bson.M{"registered_events": ev.ID}})
		return err
	})
}

// LeaveTeam removes a member; if the member is the leader the whole
// team is disbanded and every member loses the event registration.
func (r *mongoEventRepository) LeaveTeam(ctx context.Context, teamID, accountID primitive.ObjectID) error {
	return r.runTx(ctx, func(sc mongo.SessionContext) error {
		team, err := r.findTeam(sc, teamID)
		if err != nil {
			return err
		}
		if !team.HasMember(accountID) {
			return ErrNotFound
		}

		if team.IsLeader(accountID) {
			if _, err := r.teams.DeleteOne(sc, bson.M{"_id": teamID}); err != nil {
				return err
			}
			if _, err := r.events.UpdateOne(sc, bson.M{"_id": team.EventID},
				bson.M{"$pull": bson.M{"teams": teamID}}); err != nil {
				return err
			}
			_, err = r.accounts.UpdateMany(sc, bson.M{"_id": bson.M{"$in": team.Members}},
				bson.M{"$pull": bson.M{"registered_events": team.EventID}})
			return err
		}

		if _, err := r.teams.UpdateOne(sc, bson.M{"_id": teamID},
			bson.M{"$pull": bson.M{"members": accountID}}); err != nil {
			return err
		}
		_, err = r.accounts.UpdateOne(sc, bson.M{"_id": accountID},
			bson.M{"$pull": bson.M{"registered_events": team.EventID}})
		return err
	})
}

func (r *mongoEventRepository) findTeam(ctx context.Context, id primitive.ObjectID) (*domain.Team, error) {
	var team domain.Team
	if err := r.teams.FindOne(ctx, bson.M{"_id": id}).Decode(&team); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find team: %w", err)
	}
	return &team, nil
}

func (r *mongoEventRepository) FindTeamByID(ctx context.Context, id primitive.ObjectID) (*domain.Team, error) {
	return r.findTeam(ctx, id)
}

func (r *mongoEventRepository) FindTeamForAccount(ctx context.Context, eventID, accountID primitive.ObjectID) (*domain.Team, error) {
	var team domain.Team
	err := r.teams.FindOne(ctx, bson.M{"event_id": eventID, "members": accountID}).Decode(&team)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find team for account: %w", err)
	}
	return &team, nil
}

func (r *mongoEventRepository) ListTeams(ctx context.Context, eventID primitive.ObjectID) ([]domain.Team, error) {
	cur, err := r.teams.Find(ctx, bson.M{"event_id": eventID})
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	defer cur.Close(ctx)
	var teams []domain.Team
	if err := cur.All(ctx, &teams); err != nil {
		return nil, fmt.Errorf("decode teams: %w", err)
	}
	return teams, nil
}
