package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Employee is a PIN-login account exclusively owned by one Owner.
// Verification is inherited from the owner, never stored here.
type Employee struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`

	Name   string `bson:"name" json:"name"`
	Mobile string `bson:"mobile" json:"mobile"`
	Avatar string `bson:"avatar,omitempty" json:"avatar,omitempty"`

	// Snapshot of the owner's shop at creation time.
	ShopName    string  `bson:"shopName" json:"shopName"`
	ShopAddress Address `bson:"shopAddress,omitempty" json:"shopAddress"`

	PinHash string `bson:"pinHash" json:"-"`

	QRCodeURL string `bson:"qrCodeUrl,omitempty" json:"qrCodeUrl,omitempty"`

	Owner *primitive.ObjectID `bson:"owner,omitempty" json:"ownerId,omitempty"`

	Role   string `bson:"role" json:"role"`     // always EMPLOYEE
	Status string `bson:"status" json:"status"` // Active | Inactive

	RefreshToken string `bson:"refreshToken,omitempty" json:"-"`
}
