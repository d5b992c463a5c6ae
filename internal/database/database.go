package database

import (
	"context"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var Client *mongo.Client
var DB *mongo.Database

// Collection names for the four core stores plus the directory extras.
const (
	ColUsers         = "users"
	ColEmployees     = "employees"
	ColOtps          = "otps"
	ColScanEvents    = "scan_events"
	ColAssociations  = "associations"
	ColSubscriptions = "subscriptions"
)

func Connect(mongoURI string) error {
	// Use longer timeout for Atlas connections
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(mongoURI)
	clientOptions.SetServerSelectionTimeout(10 * time.Second)

	log.Printf("Attempting to connect to MongoDB...")
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return err
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer pingCancel()

	if err = client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return err
	}

	Client = client

	// Extract database name from URI or use default
	dbName := "membership"
	if mongoURI != "" {
		parts := strings.Split(mongoURI, "/")
		if len(parts) > 3 {
			dbPart := strings.Split(parts[len(parts)-1], "?")[0]
			if dbPart != "" {
				dbName = dbPart
			}
		}
	}

	DB = client.Database(dbName)

	log.Println("✅ Connected to MongoDB")
	return nil
}

// EnsureIndexes configures the indexes the core queries depend on.
// Called on startup from main after Mongo has connected.
func EnsureIndexes(ctx context.Context) error {
	type colIndexes struct {
		col    string
		models []mongo.IndexModel
	}

	all := []colIndexes{
		{
			col: ColUsers,
			models: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "email", Value: 1}},
					Options: options.Index().SetName("idx_email_unique").SetUnique(true),
				},
				{
					// Sparse: owners without a registration number yet don't collide on "".
					Keys:    bson.D{{Key: "registrationNumber", Value: 1}},
					Options: options.Index().SetName("idx_regno_unique").SetUnique(true).SetSparse(true),
				},
				{
					Keys:    bson.D{{Key: "shopLocation", Value: "2dsphere"}},
					Options: options.Index().SetName("idx_shop_location"),
				},
			},
		},
		{
			col: ColEmployees,
			models: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "mobile", Value: 1}, {Key: "owner", Value: 1}},
					Options: options.Index().SetName("idx_mobile_owner"),
				},
				{
					Keys:    bson.D{{Key: "owner", Value: 1}, {Key: "status", Value: 1}},
					Options: options.Index().SetName("idx_owner_status"),
				},
			},
		},
		{
			col: ColOtps,
			models: []mongo.IndexModel{
				{
					// one code document per (email, purpose); issue is an
					// upsert that replaces it in place
					Keys: bson.D{
						{Key: "email", Value: 1},
						{Key: "purpose", Value: 1},
					},
					Options: options.Index().SetName("idx_otp_identity").SetUnique(true),
				},
			},
		},
		{
			col: ColScanEvents,
			models: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "fromUser", Value: 1}, {Key: "createdAt", Value: -1}},
					Options: options.Index().SetName("idx_from_created"),
				},
				{
					Keys:    bson.D{{Key: "toUser", Value: 1}, {Key: "createdAt", Value: -1}},
					Options: options.Index().SetName("idx_to_created"),
				},
			},
		},
		{
			col: ColSubscriptions,
			models: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "member", Value: 1}, {Key: "monthKey", Value: 1}},
					Options: options.Index().SetName("idx_member_month_unique").SetUnique(true),
				},
			},
		},
	}

	for _, ci := range all {
		if _, err := DB.Collection(ci.col).Indexes().CreateMany(ctx, ci.models); err != nil {
			return err
		}
	}
	return nil
}

func Disconnect() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return Client.Disconnect(ctx)
}
