package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	SubscriptionPaid   = "PAID"
	SubscriptionFailed = "FAILED"
)

// Subscription is one member's dues record for one month. Unique per
// (member, monthKey); admin upserts replace the month's record.
type Subscription struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`

	Member   primitive.ObjectID `bson:"member" json:"member"`
	MonthKey string             `bson:"monthKey" json:"monthKey"` // YYYY-MM

	SubscriptionAmount float64 `bson:"subscriptionAmount" json:"subscriptionAmount"`
	MeetingAmount      float64 `bson:"meetingAmount" json:"meetingAmount"`

	Status   string    `bson:"status" json:"status"` // PAID | FAILED
	PaidDate time.Time `bson:"paidDate" json:"paidDate"`

	CreatedBy     *primitive.ObjectID `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	AttachmentURL string              `bson:"attachmentUrl,omitempty" json:"attachmentUrl,omitempty"`
	Notes         string              `bson:"notes,omitempty" json:"notes"`
}
