package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PurposeEmailVerification     = "email-verification"
	PurposePasswordReset         = "password-reset"
	PurposeInstituteVerification = "institute-email-verification"
)

// CodeTTL is the hard lifetime of a one-time code. The mongo TTL index
// sweeps expired documents, but the sweep is periodic, so lookups filter
// on CreatedAt as well.
const CodeTTL = 10 * time.Minute

// OneTimeCode stores only the bcrypt hash of an issued code. At most one
// live code exists per (identifier, purpose); issuing a new one replaces
// the old document.
type OneTimeCode struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Identifier string              `bson:"identifier" json:"identifier"`
	Purpose    string              `bson:"purpose" json:"purpose"`
	CodeHash   string              `bson:"code_hash" json:"-"`
	AccountID  *primitive.ObjectID `bson:"account_id,omitempty" json:"account_id,omitempty"`
	CreatedAt  time.Time           `bson:"created_at" json:"created_at"`
}

func (c *OneTimeCode) Expired(now time.Time) bool {
	return now.Sub(c.CreatedAt) >= CodeTTL
}

func ValidPurpose(p string) bool {
	switch p {
	case PurposeEmailVerification, PurposePasswordReset, PurposeInstituteVerification:
		return true
	}
	return false
}
