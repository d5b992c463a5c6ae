package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tnma-app/membership-backend/internal/database"
)

// OtpExpiry is how long an issued code stays valid.
const OtpExpiry = 10 * time.Minute

// ErrOtpInvalid covers wrong, already-used, and expired codes alike; callers
// must not distinguish them to the client.
var ErrOtpInvalid = errors.New("invalid or expired OTP")

func randomOtpCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// IssueOtp replaces the code document for (email, purpose) with a fresh one.
// Exactly one code document exists per (email, purpose), so "at most one
// usable code" holds by construction: the replacement is a single upsert, not
// an invalidate-then-insert pair that concurrent requests could interleave.
// The unique index on (email, purpose) backs the upsert; a concurrent insert
// race surfaces as a duplicate key, retried once against the now-present doc.
func IssueOtp(ctx context.Context, email, purpose string) (string, error) {
	code, err := randomOtpCode()
	if err != nil {
		return "", err
	}

	col := database.DB.Collection(database.ColOtps)
	now := time.Now().UTC()

	for attempt := 0; attempt < 2; attempt++ {
		res := col.FindOneAndUpdate(ctx,
			bson.M{"email": email, "purpose": purpose},
			bson.M{
				"$set": bson.M{
					"code":      code,
					"isUsed":    false,
					"expiresAt": now.Add(OtpExpiry),
				},
				"$setOnInsert": bson.M{"createdAt": now},
			},
			options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
		)
		if err := res.Err(); err != nil {
			if mongo.IsDuplicateKeyError(err) && attempt == 0 {
				continue
			}
			return "", fmt.Errorf("issue otp: %w", err)
		}
		return code, nil
	}
	return "", errors.New("issue otp: upsert did not settle")
}

// ConsumeOtp marks a matching live code as used. A single conditional
// FindOneAndUpdate makes double-spending one code impossible even under
// concurrent verify attempts.
func ConsumeOtp(ctx context.Context, email, code, purpose string) error {
	col := database.DB.Collection(database.ColOtps)

	res := col.FindOneAndUpdate(ctx,
		bson.M{
			"email":     email,
			"code":      code,
			"purpose":   purpose,
			"isUsed":    false,
			"expiresAt": bson.M{"$gt": time.Now().UTC()},
		},
		bson.M{"$set": bson.M{"isUsed": true}},
	)
	if err := res.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrOtpInvalid
		}
		return err
	}
	return nil
}
