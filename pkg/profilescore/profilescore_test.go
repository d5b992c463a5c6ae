package profilescore

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tnma-app/membership-backend/internal/models"
)

func fullUser() *models.User {
	addr := models.Address{
		Street: "1 Main St", Area: "Centre", City: "Chennai",
		District: "Chennai", State: "TN", Pincode: "600001",
	}
	return &models.User{
		Name:             "Ravi",
		Email:            "ravi@example.com",
		Mobile:           "9000000001",
		WhatsappNumber:   "9000000001",
		Avatar:           "https://img/avatar.png",
		Address:          addr,
		BusinessType:     models.BusinessRetail,
		BusinessCategory: "Textiles",
		ShopName:         "Ravi Stores",
		ShopAddress:      addr,
		ShopFront:        "https://img/front.png",
		ShopBanner:       "https://img/banner.png",
		ShopLoc:          &models.GeoPoint{Type: "Point", Coordinates: []float64{80.27, 13.08}},
	}
}

func TestPercentBounds(t *testing.T) {
	assert.Equal(t, 0, Percent(nil))
	assert.Equal(t, 0, Percent(&models.User{}))
	assert.Equal(t, 100, Percent(fullUser()))
}

func TestPercentMonotonic(t *testing.T) {
	u := &models.User{}
	prev := Percent(u)

	u.Name = "Ravi"
	next := Percent(u)
	assert.Greater(t, next, prev)
	prev = next

	u.Email = "ravi@example.com"
	next = Percent(u)
	assert.Greater(t, next, prev)
	prev = next

	// clearing a field never increases the score
	u.Name = ""
	assert.Less(t, Percent(u), prev)
}

func TestPercentIgnoresSentinelLocation(t *testing.T) {
	u := fullUser()
	full := Percent(u)

	u.ShopLoc = &models.GeoPoint{Type: "Point", Coordinates: []float64{0, 0}}
	assert.Less(t, Percent(u), full)

	u.ShopLoc = &models.GeoPoint{Type: "Point", Coordinates: []float64{80.27}}
	assert.Less(t, Percent(u), full)

	u.ShopLoc = nil
	assert.Less(t, Percent(u), full)
}

func TestShopCompletedRequiresEveryShopField(t *testing.T) {
	assert.True(t, ShopCompleted(fullUser()))
	assert.False(t, ShopCompleted(nil))

	breakers := []func(u *models.User){
		func(u *models.User) { u.ShopName = "" },
		func(u *models.User) { u.BusinessType = "" },
		func(u *models.User) { u.BusinessCategory = "" },
		func(u *models.User) { u.ShopAddress.Street = "" },
		func(u *models.User) { u.ShopAddress.City = "" },
		func(u *models.User) { u.ShopAddress.District = "" },
		func(u *models.User) { u.ShopAddress.State = "" },
		func(u *models.User) { u.ShopAddress.Pincode = "" },
		func(u *models.User) { u.ShopLoc = &models.GeoPoint{Coordinates: []float64{0, 0}} },
		func(u *models.User) { u.ShopLoc = nil },
	}
	for i, mutate := range breakers {
		u := fullUser()
		mutate(u)
		assert.False(t, ShopCompleted(u), "breaker %d should flip shopCompleted", i)
	}
}

func TestShopCompletedIndependentOfPersonalProfile(t *testing.T) {
	u := fullUser()
	u.Name = ""
	u.Email = ""
	u.Avatar = ""
	u.Address = models.Address{}
	assert.True(t, ShopCompleted(u))
}
