package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Account is a registered principal. PasswordHash and RefreshToken are
// never serialized to JSON; RefreshToken mirrors the single currently
// valid refresh token so it can be revoked server-side.
type Account struct {
	ID                     primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Email                  string               `bson:"email" json:"email"`
	Handle                 string               `bson:"handle" json:"handle"`
	Name                   string               `bson:"name" json:"name"`
	PasswordHash           string               `bson:"password_hash" json:"-"`
	Role                   string               `bson:"role" json:"role"`
	EmailVerified          bool                 `bson:"email_verified" json:"email_verified"`
	InstituteEmail         string               `bson:"institute_email,omitempty" json:"institute_email,omitempty"`
	InstituteEmailVerified bool                 `bson:"institute_email_verified" json:"institute_email_verified"`
	RefreshToken           string               `bson:"refresh_token,omitempty" json:"-"`
	Score                  int                  `bson:"score" json:"score"`
	RegisteredEvents       []primitive.ObjectID `bson:"registered_events,omitempty" json:"registered_events,omitempty"`
	CreatedAt              time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt              time.Time            `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

func (a *Account) IsAdmin() bool { return a.Role == RoleAdmin }

// Principal returns a copy safe to hand outside the auth layer:
// credential material is dropped.
func (a *Account) Principal() *Account {
	p := *a
	p.PasswordHash = ""
	p.RefreshToken = ""
	return &p
}

func (a *Account) RegisteredFor(eventID primitive.ObjectID) bool {
	for _, id := range a.RegisteredEvents {
		if id == eventID {
			return true
		}
	}
	return false
}
