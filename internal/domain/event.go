package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event holds registration state. MaxParticipants and MaxTeams are nil
// for unlimited. SoloRegistrants and Teams are mutated only through the
// registration transaction helpers.
type Event struct {
	ID                   primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title                string               `bson:"title" json:"title"`
	Description          string               `bson:"description,omitempty" json:"description,omitempty"`
	StartsAt             time.Time            `bson:"starts_at" json:"starts_at"`
	EndsAt               time.Time            `bson:"ends_at,omitempty" json:"ends_at,omitempty"`
	RegistrationOpen     bool                 `bson:"registration_open" json:"registration_open"`
	TeamRegistrationOpen bool                 `bson:"team_registration_open" json:"team_registration_open"`
	MinTeamSize          int                  `bson:"min_team_size,omitempty" json:"min_team_size,omitempty"`
	MaxTeamSize          int                  `bson:"max_team_size,omitempty" json:"max_team_size,omitempty"`
	MaxParticipants      *int                 `bson:"max_participants,omitempty" json:"max_participants,omitempty"`
	MaxTeams             *int                 `bson:"max_teams,omitempty" json:"max_teams,omitempty"`
	SoloRegistrants      []primitive.ObjectID `bson:"solo_registrants,omitempty" json:"solo_registrants,omitempty"`
	Teams                []primitive.ObjectID `bson:"teams,omitempty" json:"teams,omitempty"`
	CreatedAt            time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt            time.Time            `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

func (e *Event) HasSoloRegistrant(accountID primitive.ObjectID) bool {
	for _, id := range e.SoloRegistrants {
		if id == accountID {
			return true
		}
	}
	return false
}

// SoloCapacityLeft reports whether another solo registrant fits. Team
// members count against MaxParticipants too, so callers pass the total
// of current team members for the event.
func (e *Event) SoloCapacityLeft(teamMemberCount int) bool {
	if e.MaxParticipants == nil {
		return true
	}
	return len(e.SoloRegistrants)+teamMemberCount < *e.MaxParticipants
}

func (e *Event) TeamCapacityLeft() bool {
	if e.MaxTeams == nil {
		return true
	}
	return len(e.Teams) < *e.MaxTeams
}
