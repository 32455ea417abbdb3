package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Team name is unique within its event. The leader is always a member;
// if the leader leaves, the whole team is disbanded.
type Team struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name      string               `bson:"name" json:"name"`
	EventID   primitive.ObjectID   `bson:"event_id" json:"event_id"`
	LeaderID  primitive.ObjectID   `bson:"leader_id" json:"leader_id"`
	Members   []primitive.ObjectID `bson:"members" json:"members"`
	CreatedAt time.Time            `bson:"created_at" json:"created_at"`
}

func (t *Team) HasMember(accountID primitive.ObjectID) bool {
	for _, id := range t.Members {
		if id == accountID {
			return true
		}
	}
	return false
}

func (t *Team) IsLeader(accountID primitive.ObjectID) bool {
	return t.LeaderID == accountID
}
