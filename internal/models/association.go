package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Association is trade-association metadata members can link themselves to.
type Association struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`

	Name     string  `bson:"name" json:"name"`
	Logo     string  `bson:"logo,omitempty" json:"logo,omitempty"`
	District string  `bson:"district" json:"district"`
	Area     string  `bson:"area" json:"area"`
	Address  Address `bson:"address,omitempty" json:"address"`
	IsActive bool    `bson:"isActive" json:"isActive"`
}
