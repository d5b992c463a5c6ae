package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ActionBuy     = "BUY"
	ActionReturn  = "RETURN"
	ActionUnknown = "UNKNOWN"
)

// ScanEvent is one QR scan between two principals. Immutable once created:
// names and shop names are snapshotted at scan time so later profile edits
// never rewrite history.
type ScanEvent struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`

	FromUser primitive.ObjectID `bson:"fromUser" json:"fromUser"`
	ToUser   primitive.ObjectID `bson:"toUser" json:"toUser"`

	FromName     string `bson:"fromName" json:"fromName"`
	ToName       string `bson:"toName" json:"toName"`
	FromShopName string `bson:"fromShopName,omitempty" json:"fromShopName"`
	ToShopName   string `bson:"toShopName,omitempty" json:"toShopName"`

	ActionType string `bson:"actionType" json:"actionType"` // BUY | RETURN | UNKNOWN
	Notes      string `bson:"notes,omitempty" json:"notes"`
}

// NormalizeAction maps anything that is not exactly BUY or RETURN to UNKNOWN.
func NormalizeAction(action string) string {
	if action == ActionBuy || action == ActionReturn {
		return action
	}
	return ActionUnknown
}
