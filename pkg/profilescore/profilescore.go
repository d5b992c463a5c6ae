// Package profilescore derives profile completeness from a user's current
// field set. Stored percent/shopCompleted values are a cache; recompute here
// on every login and profile mutation instead of trusting them.
package profilescore

import (
	"strings"

	"github.com/tnma-app/membership-backend/internal/models"
)

func hasValue(v string) bool {
	return strings.TrimSpace(v) != ""
}

// Percent evaluates the fixed 23-item checklist and returns
// round(100 * filled/total), always within [0,100].
func Percent(u *models.User) int {
	if u == nil {
		return 0
	}

	flags := []bool{
		// basic profile
		hasValue(u.Name),
		hasValue(u.Email),
		hasValue(u.Mobile),
		hasValue(u.WhatsappNumber),
		hasValue(u.Avatar),

		// personal address
		hasValue(u.Address.Street),
		hasValue(u.Address.Area),
		hasValue(u.Address.City),
		hasValue(u.Address.District),
		hasValue(u.Address.State),
		hasValue(u.Address.Pincode),

		// business
		hasValue(u.BusinessType),
		hasValue(u.BusinessCategory),

		// shop
		hasValue(u.ShopName),
		hasValue(u.ShopAddress.Street),
		hasValue(u.ShopAddress.Area),
		hasValue(u.ShopAddress.City),
		hasValue(u.ShopAddress.District),
		hasValue(u.ShopAddress.State),
		hasValue(u.ShopAddress.Pincode),
		hasValue(u.ShopFront),
		hasValue(u.ShopBanner),
		u.ShopLoc.Valid(),
	}

	completed := 0
	for _, f := range flags {
		if f {
			completed++
		}
	}

	pct := (completed*100 + len(flags)/2) / len(flags)
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// ShopCompleted checks only the shop subset: name, business type/category,
// full shop address, and a valid geolocation. Independent of the personal
// profile fields.
func ShopCompleted(u *models.User) bool {
	if u == nil {
		return false
	}

	sa := u.ShopAddress
	hasAddress := hasValue(sa.Street) &&
		hasValue(sa.City) &&
		hasValue(sa.District) &&
		hasValue(sa.State) &&
		hasValue(sa.Pincode)

	return hasValue(u.ShopName) &&
		hasValue(u.BusinessType) &&
		hasValue(u.BusinessCategory) &&
		hasAddress &&
		u.ShopLoc.Valid()
}
