package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/tnma-app/membership-backend/internal/database"
	"github.com/tnma-app/membership-backend/internal/middleware"
	"github.com/tnma-app/membership-backend/internal/models"
	"github.com/tnma-app/membership-backend/internal/services"
)

func verifiedScanner() *models.Principal {
	return models.UserPrincipal(&models.User{
		ID:                primitive.NewObjectID(),
		Name:              "Scanner",
		ShopName:          "Scanner Shop",
		Role:              models.RoleOwner,
		IsProfileVerified: true,
	})
}

func doScan(t *testing.T, p *models.Principal, body map[string]interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/qr/scan", bytes.NewReader(payload))
	req = middleware.WithPrincipal(req, p)
	rec := httptest.NewRecorder()
	ScanQr(rec, req)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &parsed))
	return rec, parsed
}

func TestScanQrSnapshotsStoredShopName(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("payload shop name never reaches the ledger", func(mt *mtest.T) {
		database.DB = mt.Client.Database("membership")

		ownerID := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "membership.users", mtest.FirstBatch, bson.D{
				{Key: "_id", Value: ownerID},
				{Key: "name", Value: "Ravi"},
				{Key: "shopName", Value: "Ravi Stores"},
				{Key: "isProfileVerified", Value: true},
			}),
			mtest.CreateSuccessResponse(),
		)

		rec, parsed := doScan(mt.T, verifiedScanner(), map[string]interface{}{
			"raw":        `{"id":"` + ownerID.Hex() + `","type":"OWNER","shopName":"Totally Fake Shop"}`,
			"actionType": "BUY",
			"notes":      "  needs delivery  ",
		})
		require.Equal(mt, http.StatusOK, rec.Code)
		assert.Equal(mt, services.CodeScanOk, parsed["code"])

		find := mt.GetStartedEvent()
		require.NotNil(mt, find)
		assert.Equal(mt, "find", find.CommandName)

		insert := mt.GetStartedEvent()
		require.NotNil(mt, insert)
		require.Equal(mt, "insert", insert.CommandName)

		docs, err := insert.Command.Lookup("documents").Array().Values()
		require.NoError(mt, err)
		require.Len(mt, docs, 1)
		event := docs[0].Document()

		assert.Equal(mt, "Ravi Stores", event.Lookup("toShopName").StringValue())
		assert.Equal(mt, "Ravi", event.Lookup("toName").StringValue())
		assert.Equal(mt, "needs delivery", event.Lookup("notes").StringValue())
		assert.Equal(mt, "BUY", event.Lookup("actionType").StringValue())
	})
}

func TestScanQrUntypedMissReportsInvalidQr(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("raw id with no match", func(mt *mtest.T) {
		database.DB = mt.Client.Database("membership")

		mt.AddMockResponses(mtest.CreateCursorResponse(0, "membership.users", mtest.FirstBatch))

		rec, parsed := doScan(mt.T, verifiedScanner(), map[string]interface{}{
			"raw": primitive.NewObjectID().Hex(),
		})
		assert.Equal(mt, http.StatusNotFound, rec.Code)
		assert.Equal(mt, services.CodeInvalidQr, parsed["code"])
	})

	mt.Run("typed OWNER miss keeps OWNER_NOT_FOUND", func(mt *mtest.T) {
		database.DB = mt.Client.Database("membership")

		mt.AddMockResponses(mtest.CreateCursorResponse(0, "membership.users", mtest.FirstBatch))

		rec, parsed := doScan(mt.T, verifiedScanner(), map[string]interface{}{
			"raw": `{"id":"` + primitive.NewObjectID().Hex() + `","type":"OWNER"}`,
		})
		assert.Equal(mt, http.StatusNotFound, rec.Code)
		assert.Equal(mt, services.CodeOwnerNotFound, parsed["code"])
	})
}

func TestScanQrRequestFieldNames(t *testing.T) {
	// an unverified owner is rejected after body validation, so reaching the
	// scanner gate proves the payload field was accepted
	unverified := models.UserPrincipal(&models.User{
		ID:   primitive.NewObjectID(),
		Name: "Scanner",
		Role: models.RoleOwner,
	})

	rec, parsed := doScan(t, unverified, map[string]interface{}{"raw": "anything"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, services.CodeScannerNotVerified, parsed["code"])

	// legacy clients still send qrData
	rec, parsed = doScan(t, unverified, map[string]interface{}{"qrData": "anything"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, services.CodeScannerNotVerified, parsed["code"])

	rec, parsed = doScan(t, unverified, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, services.CodeInvalidQr, parsed["code"])
}
