package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	OtpPurposeVerifyEmail = "verify_email"
	OtpPurposeLogin       = "login"
)

// Otp is a one-time numeric code. Exactly one document exists per
// (email, purpose); issuing a new code replaces it in place, so at most one
// unused, unexpired code can exist at any moment.
type Otp struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`

	Email     string    `bson:"email" json:"email"`
	Code      string    `bson:"code" json:"-"`
	Purpose   string    `bson:"purpose" json:"purpose"`
	IsUsed    bool      `bson:"isUsed" json:"isUsed"`
	ExpiresAt time.Time `bson:"expiresAt" json:"expiresAt"`
}
