// Package token mints and verifies the access/refresh JWT pair.
//
// Access and refresh tokens are signed with independent secrets so a leaked
// refresh secret cannot forge access tokens and vice versa.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 30 * 24 * time.Hour

	// SubjectTypeEmployee marks tokens whose subject lives in the
	// employees collection rather than users.
	SubjectTypeEmployee = "EMPLOYEE"
)

// ErrNoSecret is a configuration error, not a request error. Callers must
// check secrets at startup; signing never silently produces an unverifiable
// token.
var ErrNoSecret = errors.New("token: JWT secret not configured")

// Claims carries the subject identity alongside the registered claims.
type Claims struct {
	jwt.RegisteredClaims
	Role        string `json:"role"`
	Provider    string `json:"provider"`
	SubjectType string `json:"subjectType,omitempty"`
}

// Pair is one issued access/refresh token pair.
type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Issue signs an access + refresh pair for the given subject.
// subjectType is empty for owners/admins and SubjectTypeEmployee for employees.
func Issue(accessSecret, refreshSecret, sub, role, provider, subjectType string) (Pair, error) {
	if accessSecret == "" || refreshSecret == "" {
		return Pair{}, ErrNoSecret
	}
	if sub == "" {
		return Pair{}, errors.New("token: subject is required")
	}

	access, err := sign(accessSecret, sub, role, provider, subjectType, AccessTokenTTL)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := sign(refreshSecret, sub, role, provider, subjectType, RefreshTokenTTL)
	if err != nil {
		return Pair{}, err
	}
	return Pair{AccessToken: access, RefreshToken: refresh}, nil
}

func sign(secret, sub, role, provider, subjectType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role:        role,
		Provider:    provider,
		SubjectType: subjectType,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Parse validates signature and expiry and returns the claims.
func Parse(secret, tokenString string) (*Claims, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	tok, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, errors.New("token: invalid claims")
	}
	return claims, nil
}
