package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles stored on User documents. Employees live in their own collection
// but share the role namespace through token claims.
const (
	RoleOwner    = "OWNER"
	RoleAdmin    = "ADMIN"
	RoleEmployee = "EMPLOYEE"
)

const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

const (
	BusinessRetail    = "RETAIL"
	BusinessWholesale = "WHOLESALE"
)

// Address is the shared sub-document for personal and shop addresses.
type Address struct {
	Street   string `bson:"street,omitempty" json:"street,omitempty"`
	Area     string `bson:"area,omitempty" json:"area,omitempty"`
	City     string `bson:"city,omitempty" json:"city,omitempty"`
	District string `bson:"district,omitempty" json:"district,omitempty"`
	State    string `bson:"state,omitempty" json:"state,omitempty"`
	Pincode  string `bson:"pincode,omitempty" json:"pincode,omitempty"`
}

// GeoPoint is a GeoJSON point, [lng, lat]. Coordinates (0,0) is the
// "never set" sentinel and is rejected on writes.
type GeoPoint struct {
	Type        string    `bson:"type,omitempty" json:"type,omitempty"`
	Coordinates []float64 `bson:"coordinates,omitempty" json:"coordinates,omitempty"`
}

// Valid reports whether the point is a well-formed, non-sentinel coordinate pair.
func (g *GeoPoint) Valid() bool {
	if g == nil || len(g.Coordinates) != 2 {
		return false
	}
	return g.Coordinates[0] != 0 || g.Coordinates[1] != 0
}

// User is an OWNER or ADMIN account (the "principals" collection).
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`

	Name     string `bson:"name" json:"name"`
	Email    string `bson:"email" json:"email"`
	Password string `bson:"password,omitempty" json:"-"`

	Mobile         string `bson:"mobile,omitempty" json:"mobile,omitempty"`
	WhatsappNumber string `bson:"whatsappNumber,omitempty" json:"whatsappNumber,omitempty"`
	Avatar         string `bson:"avatar,omitempty" json:"avatar,omitempty"`

	RefreshToken string `bson:"refreshToken,omitempty" json:"-"`
	VerifyEmail  bool   `bson:"verifyEmail" json:"verifyEmail"`

	Provider string `bson:"provider" json:"provider"` // local | google
	Role     string `bson:"role" json:"role"`         // OWNER | ADMIN
	Status   string `bson:"status" json:"status"`     // Active | Inactive

	// Weak reference into the associations collection.
	Association *primitive.ObjectID `bson:"association,omitempty" json:"association,omitempty"`

	Address Address `bson:"address,omitempty" json:"address"`

	ShopName    string    `bson:"shopName,omitempty" json:"shopName"`
	ShopAddress Address   `bson:"shopAddress,omitempty" json:"shopAddress"`
	ShopFront   string    `bson:"shopFront,omitempty" json:"shopFront,omitempty"`
	ShopBanner  string    `bson:"shopBanner,omitempty" json:"shopBanner,omitempty"`
	ShopLoc     *GeoPoint `bson:"shopLocation,omitempty" json:"shopLocation,omitempty"`

	BusinessType     string `bson:"businessType,omitempty" json:"businessType"`
	BusinessCategory string `bson:"businessCategory,omitempty" json:"businessCategory"`

	RegistrationNumber string `bson:"registrationNumber,omitempty" json:"registrationNumber,omitempty"`
	QRCodeURL          string `bson:"qrCodeUrl,omitempty" json:"qrCodeUrl,omitempty"`

	LastLoginDate *time.Time `bson:"lastLoginDate,omitempty" json:"lastLoginDate,omitempty"`

	// Derived fields. Stored values are a cache only; recompute via
	// pkg/profilescore before branching on them.
	ProfilePercent    int  `bson:"profilePercent" json:"profilePercent"`
	ShopCompleted     bool `bson:"shopCompleted" json:"shopCompleted"`
	IsProfileVerified bool `bson:"isProfileVerified" json:"isProfileVerified"`
}
