package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/tnma-app/membership-backend/internal/database"
	"github.com/tnma-app/membership-backend/internal/models"
)

func TestIssueOtpIsOneAtomicUpsert(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("replaces the live code in a single command", func(mt *mtest.T) {
		database.DB = mt.Client.Database("membership")

		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: bson.D{
				{Key: "_id", Value: primitive.NewObjectID()},
				{Key: "email", Value: "ravi@example.com"},
				{Key: "purpose", Value: models.OtpPurposeVerifyEmail},
				{Key: "isUsed", Value: false},
			}},
		))

		code, err := IssueOtp(context.Background(), "ravi@example.com", models.OtpPurposeVerifyEmail)
		require.NoError(mt, err)
		assert.Regexp(mt, `^\d{6}$`, code)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "findAndModify", evt.CommandName)

		upsert, lookupErr := evt.Command.LookupErr("upsert")
		require.NoError(mt, lookupErr)
		assert.True(mt, upsert.Boolean())

		// issuing sends no separate invalidate command before or after
		assert.Nil(mt, mt.GetStartedEvent())
	})
}

func TestConsumeOtpIsSingleUse(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("second consume of the same code fails", func(mt *mtest.T) {
		database.DB = mt.Client.Database("membership")

		claimed := bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "email", Value: "ravi@example.com"},
			{Key: "purpose", Value: models.OtpPurposeLogin},
			{Key: "isUsed", Value: false},
		}
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: claimed}),
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
		)

		ctx := context.Background()
		require.NoError(mt, ConsumeOtp(ctx, "ravi@example.com", "123456", models.OtpPurposeLogin))

		err := ConsumeOtp(ctx, "ravi@example.com", "123456", models.OtpPurposeLogin)
		assert.ErrorIs(mt, err, ErrOtpInvalid)

		// the claim filter only matches an unused, unexpired code
		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "findAndModify", evt.CommandName)
		query := evt.Command.Lookup("query").Document()
		assert.False(mt, query.Lookup("isUsed").Boolean())
		assert.Equal(mt, "123456", query.Lookup("code").StringValue())
	})
}
