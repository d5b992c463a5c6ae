package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/tnma-app/membership-backend/internal/database"
)

// GenerateRegistrationNumber produces a unique member number in the form
// TNMA-YYYY-NNNNNN. The unique sparse index on registrationNumber is the
// real guard; the pre-check just keeps retries cheap.
func GenerateRegistrationNumber(ctx context.Context) (string, error) {
	year := time.Now().Year()
	col := database.DB.Collection(database.ColUsers)

	for attempt := 0; attempt < 10; attempt++ {
		regNo := fmt.Sprintf("TNMA-%d-%06d", year, 100000+rand.Intn(900000))

		count, err := col.CountDocuments(ctx, bson.M{"registrationNumber": regNo})
		if err != nil {
			return "", err
		}
		if count == 0 {
			return regNo, nil
		}
	}
	return "", errors.New("could not allocate a unique registration number")
}
