package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tnma-app/membership-backend/internal/database"
	"github.com/tnma-app/membership-backend/internal/models"
)

const (
	// HistoryDefaultLimit applies when the client sends no limit.
	HistoryDefaultLimit = 50
	// HistoryMaxLimit caps any requested limit.
	HistoryMaxLimit = 500
)

// Party is one side of a scan event, snapshotted at scan time.
type Party struct {
	ID       primitive.ObjectID
	Name     string
	ShopName string
}

// OppositeParty resolves the owner-shaped ledger party for a scan target.
// An owner target is itself; its stored shop name is the only source for the
// snapshot, never anything carried inside the scanned payload. An employee
// target contributes its parent owner's id, with the employee's own shop name
// taking precedence over the owner's. ok is false when an employee target has
// no resolvable parent owner.
func OppositeParty(owner *models.User, employee *models.Employee, parentOwner *models.User) (Party, bool) {
	if owner != nil {
		return Party{ID: owner.ID, Name: owner.Name, ShopName: owner.ShopName}, true
	}
	if employee == nil || parentOwner == nil {
		return Party{}, false
	}
	p := Party{ID: parentOwner.ID, Name: parentOwner.Name, ShopName: parentOwner.ShopName}
	if employee.ShopName != "" {
		p.ShopName = employee.ShopName
	}
	return p, true
}

// RecordScan appends one immutable event to the ledger.
func RecordScan(ctx context.Context, from, to Party, actionType, notes string) (primitive.ObjectID, error) {
	fromName := from.Name
	if fromName == "" {
		fromName = "Member"
	}
	toName := to.Name
	if toName == "" {
		toName = "Member"
	}

	event := models.ScanEvent{
		CreatedAt:    time.Now().UTC(),
		FromUser:     from.ID,
		ToUser:       to.ID,
		FromName:     fromName,
		ToName:       toName,
		FromShopName: from.ShopName,
		ToShopName:   to.ShopName,
		ActionType:   models.NormalizeAction(actionType),
		Notes:        strings.TrimSpace(notes),
	}

	res, err := database.DB.Collection(database.ColScanEvents).InsertOne(ctx, event)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert scan event: %w", err)
	}
	id, _ := res.InsertedID.(primitive.ObjectID)
	return id, nil
}

// SelfIDs builds the identity set history queries treat as "me": an Owner's
// own id plus all of their Active employees, an Employee's just its own id.
func SelfIDs(ctx context.Context, p *models.Principal) ([]primitive.ObjectID, error) {
	ids := []primitive.ObjectID{p.ID}
	if p.IsEmployee() || p.Role != models.RoleOwner {
		return ids, nil
	}

	cur, err := database.DB.Collection(database.ColEmployees).Find(ctx,
		bson.M{"owner": p.ID, "status": models.StatusActive},
		options.Find().SetProjection(bson.M{"_id": 1}),
	)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var doc struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			continue
		}
		ids = append(ids, doc.ID)
	}
	return ids, cur.Err()
}

// FetchHistory returns the newest events touching any of the self ids.
func FetchHistory(ctx context.Context, selfIDs []primitive.ObjectID, limit int64) ([]models.ScanEvent, error) {
	if limit <= 0 {
		limit = HistoryDefaultLimit
	}
	if limit > HistoryMaxLimit {
		limit = HistoryMaxLimit
	}

	col := database.DB.Collection(database.ColScanEvents)

	filter := bson.M{"$or": bson.A{
		bson.M{"fromUser": bson.M{"$in": selfIDs}},
		bson.M{"toUser": bson.M{"$in": selfIDs}},
	}}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)

	cur, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var events []models.ScanEvent
	for cur.Next(ctx) {
		var e models.ScanEvent
		if err := cur.Decode(&e); err != nil {
			continue
		}
		events = append(events, e)
	}
	return events, cur.Err()
}

// HistoryItem is one ledger row projected to the viewer's perspective.
type HistoryItem struct {
	ID       string `json:"id"`
	SelfRole string `json:"selfRole"` // SENDER | RECEIVER

	MyName     string `json:"myName"`
	MyShopName string `json:"myShopName"`

	OppositeName     string `json:"oppositeName"`
	OppositeShopName string `json:"oppositeShopName"`

	ActionType string    `json:"actionType"`
	Notes      string    `json:"notes"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ProjectHistory relabels stored from/to pairs as me/them for the given
// viewer identity set. When both or neither side is "me" (self-scan or
// degenerate data) the viewer defaults to the sender side.
func ProjectHistory(events []models.ScanEvent, selfIDs []primitive.ObjectID) []HistoryItem {
	self := make(map[primitive.ObjectID]bool, len(selfIDs))
	for _, id := range selfIDs {
		self[id] = true
	}

	items := make([]HistoryItem, 0, len(events))
	for _, e := range events {
		senderIsSelf := self[e.FromUser]
		receiverIsSelf := self[e.ToUser]

		isSender := true
		if !senderIsSelf && receiverIsSelf {
			isSender = false
		}

		item := HistoryItem{
			ID:         e.ID.Hex(),
			ActionType: e.ActionType,
			Notes:      e.Notes,
			CreatedAt:  e.CreatedAt,
		}
		if item.ActionType == "" {
			item.ActionType = models.ActionUnknown
		}

		if isSender {
			item.SelfRole = "SENDER"
			item.MyName = e.FromName
			item.MyShopName = e.FromShopName
			item.OppositeName = e.ToName
			item.OppositeShopName = e.ToShopName
		} else {
			item.SelfRole = "RECEIVER"
			item.MyName = e.ToName
			item.MyShopName = e.ToShopName
			item.OppositeName = e.FromName
			item.OppositeShopName = e.FromShopName
		}

		items = append(items, item)
	}
	return items
}
