package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPrincipalVariants(t *testing.T) {
	owner := UserPrincipal(&User{
		ID:                primitive.NewObjectID(),
		Name:              "Ravi",
		Role:              RoleOwner,
		ShopName:          "Ravi Stores",
		IsProfileVerified: true,
	})
	assert.False(t, owner.IsEmployee())
	assert.False(t, owner.IsAdmin())
	assert.True(t, owner.Verified)
	_, ok := owner.Employee()
	assert.False(t, ok)

	admin := UserPrincipal(&User{ID: primitive.NewObjectID(), Role: RoleAdmin})
	assert.True(t, admin.IsAdmin())

	ownerID := primitive.NewObjectID()
	emp := EmployeePrincipalOf(&Employee{
		ID:    primitive.NewObjectID(),
		Name:  "Sita",
		Owner: &ownerID,
	})
	assert.True(t, emp.IsEmployee())
	assert.False(t, emp.IsAdmin())

	ep, ok := emp.Employee()
	require.True(t, ok)
	require.NotNil(t, ep.OwnerID)
	assert.Equal(t, ownerID, *ep.OwnerID)
}

func TestGeoPointValid(t *testing.T) {
	assert.False(t, (*GeoPoint)(nil).Valid())
	assert.False(t, (&GeoPoint{}).Valid())
	assert.False(t, (&GeoPoint{Coordinates: []float64{80.27}}).Valid())
	assert.False(t, (&GeoPoint{Coordinates: []float64{0, 0}}).Valid())
	assert.True(t, (&GeoPoint{Coordinates: []float64{80.27, 13.08}}).Valid())
	assert.True(t, (&GeoPoint{Coordinates: []float64{0, 13.08}}).Valid())
}
