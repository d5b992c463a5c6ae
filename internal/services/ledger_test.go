package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tnma-app/membership-backend/internal/models"
)

func event(from, to primitive.ObjectID, fromName, toName string) models.ScanEvent {
	return models.ScanEvent{
		ID:           primitive.NewObjectID(),
		CreatedAt:    time.Now().UTC(),
		FromUser:     from,
		ToUser:       to,
		FromName:     fromName,
		ToName:       toName,
		FromShopName: fromName + " Shop",
		ToShopName:   toName + " Shop",
		ActionType:   models.ActionBuy,
	}
}

func TestOppositePartyOwnerUsesStoredShopName(t *testing.T) {
	owner := &models.User{
		ID:       primitive.NewObjectID(),
		Name:     "Ravi",
		ShopName: "Ravi Stores",
	}

	p, ok := OppositeParty(owner, nil, nil)
	require.True(t, ok)
	assert.Equal(t, owner.ID, p.ID)
	assert.Equal(t, "Ravi", p.Name)
	assert.Equal(t, "Ravi Stores", p.ShopName)
}

func TestOppositePartyEmployeeResolvesToParentOwner(t *testing.T) {
	parent := &models.User{
		ID:       primitive.NewObjectID(),
		Name:     "Ravi",
		ShopName: "Ravi Stores",
	}
	emp := &models.Employee{
		ID:       primitive.NewObjectID(),
		Name:     "Sita",
		ShopName: "Sita Counter",
	}

	p, ok := OppositeParty(nil, emp, parent)
	require.True(t, ok)
	assert.Equal(t, parent.ID, p.ID, "ledger party must be the owner, not the employee")
	assert.Equal(t, "Ravi", p.Name)
	assert.Equal(t, "Sita Counter", p.ShopName, "employee shop name overrides the owner's")

	emp.ShopName = ""
	p, ok = OppositeParty(nil, emp, parent)
	require.True(t, ok)
	assert.Equal(t, "Ravi Stores", p.ShopName)
}

func TestOppositePartyOrphanEmployeeFails(t *testing.T) {
	_, ok := OppositeParty(nil, &models.Employee{ID: primitive.NewObjectID()}, nil)
	assert.False(t, ok)

	_, ok = OppositeParty(nil, nil, nil)
	assert.False(t, ok)
}

func TestProjectHistorySenderAndReceiver(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()

	events := []models.ScanEvent{
		event(a, b, "A", "B"), // A scanned B
		event(b, a, "B", "A"), // B scanned A
	}

	items := ProjectHistory(events, []primitive.ObjectID{a})
	require.Len(t, items, 2)

	assert.Equal(t, "SENDER", items[0].SelfRole)
	assert.Equal(t, "A", items[0].MyName)
	assert.Equal(t, "B", items[0].OppositeName)
	assert.Equal(t, "B Shop", items[0].OppositeShopName)

	assert.Equal(t, "RECEIVER", items[1].SelfRole)
	assert.Equal(t, "A", items[1].MyName)
	assert.Equal(t, "B", items[1].OppositeName)
}

func TestProjectHistoryOwnerSeesEmployeeActivity(t *testing.T) {
	owner := primitive.NewObjectID()
	emp := primitive.NewObjectID()
	other := primitive.NewObjectID()

	// the employee id is part of the owner's self set
	items := ProjectHistory(
		[]models.ScanEvent{event(emp, other, "Emp", "Other")},
		[]primitive.ObjectID{owner, emp},
	)
	require.Len(t, items, 1)
	assert.Equal(t, "SENDER", items[0].SelfRole)
	assert.Equal(t, "Emp", items[0].MyName)
	assert.Equal(t, "Other", items[0].OppositeName)
}

func TestProjectHistoryDegenerateCasesDefaultToSender(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()
	c := primitive.NewObjectID()

	// self-scan: both sides are "me"
	items := ProjectHistory([]models.ScanEvent{event(a, a, "A", "A")}, []primitive.ObjectID{a})
	require.Len(t, items, 1)
	assert.Equal(t, "SENDER", items[0].SelfRole)

	// neither side is "me" (stale self set)
	items = ProjectHistory([]models.ScanEvent{event(b, c, "B", "C")}, []primitive.ObjectID{a})
	require.Len(t, items, 1)
	assert.Equal(t, "SENDER", items[0].SelfRole)
}

func TestProjectHistoryNormalizesEmptyAction(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()

	e := event(a, b, "A", "B")
	e.ActionType = ""

	items := ProjectHistory([]models.ScanEvent{e}, []primitive.ObjectID{a})
	require.Len(t, items, 1)
	assert.Equal(t, models.ActionUnknown, items[0].ActionType)
}

func TestProjectHistoryEmptyInput(t *testing.T) {
	items := ProjectHistory(nil, []primitive.ObjectID{primitive.NewObjectID()})
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestNormalizeAction(t *testing.T) {
	assert.Equal(t, models.ActionBuy, models.NormalizeAction("BUY"))
	assert.Equal(t, models.ActionReturn, models.NormalizeAction("RETURN"))
	assert.Equal(t, models.ActionUnknown, models.NormalizeAction("buy"))
	assert.Equal(t, models.ActionUnknown, models.NormalizeAction(""))
	assert.Equal(t, models.ActionUnknown, models.NormalizeAction("SELL"))
}
