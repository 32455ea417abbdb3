package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Riddle stores the answer only as a bcrypt hash. SolvedBy guards
// double-scoring: an account appears at most once.
type Riddle struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title      string               `bson:"title" json:"title"`
	Question   string               `bson:"question" json:"question"`
	AnswerHash string               `bson:"answer_hash" json:"-"`
	Points     int                  `bson:"points" json:"points"`
	Active     bool                 `bson:"active" json:"active"`
	SolvedBy   []primitive.ObjectID `bson:"solved_by,omitempty" json:"-"`
	CreatedAt  time.Time            `bson:"created_at" json:"created_at"`
}

func (r *Riddle) SolvedByAccount(accountID primitive.ObjectID) bool {
	for _, id := range r.SolvedBy {
		if id == accountID {
			return true
		}
	}
	return false
}

// LeaderboardEntry is a projection of Account used for score listings.
type LeaderboardEntry struct {
	AccountID primitive.ObjectID `bson:"_id" json:"account_id"`
	Handle    string             `bson:"handle" json:"handle"`
	Name      string             `bson:"name" json:"name"`
	Score     int                `bson:"score" json:"score"`
}
