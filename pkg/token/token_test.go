package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParseRoundTrip(t *testing.T) {
	pair, err := Issue("access-secret", "refresh-secret", "64b000000000000000000001", "OWNER", "local", "")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	claims, err := Parse("access-secret", pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "64b000000000000000000001", claims.Subject)
	assert.Equal(t, "OWNER", claims.Role)
	assert.Equal(t, "local", claims.Provider)
	assert.Empty(t, claims.SubjectType)
}

func TestEmployeeTokenCarriesSubjectType(t *testing.T) {
	pair, err := Issue("a", "r", "64b000000000000000000002", "EMPLOYEE", "local", SubjectTypeEmployee)
	require.NoError(t, err)

	claims, err := Parse("a", pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, SubjectTypeEmployee, claims.SubjectType)
}

func TestSecretsAreIndependent(t *testing.T) {
	pair, err := Issue("access-secret", "refresh-secret", "64b000000000000000000003", "OWNER", "local", "")
	require.NoError(t, err)

	// access token must not verify under the refresh secret
	_, err = Parse("refresh-secret", pair.AccessToken)
	assert.Error(t, err)

	// refresh token verifies only under the refresh secret
	_, err = Parse("refresh-secret", pair.RefreshToken)
	assert.NoError(t, err)
}

func TestParseRejectsTamperedToken(t *testing.T) {
	pair, err := Issue("s1", "s2", "64b000000000000000000004", "OWNER", "local", "")
	require.NoError(t, err)

	tampered := pair.AccessToken[:len(pair.AccessToken)-2] + "xx"
	_, err = Parse("s1", tampered)
	assert.Error(t, err)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "64b000000000000000000005",
			IssuedAt:  jwt.NewNumericDate(now.Add(-time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
		},
		Role: "OWNER",
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("s1"))
	require.NoError(t, err)

	_, err = Parse("s1", signed)
	assert.Error(t, err)
}

func TestMissingSecretFailsClosed(t *testing.T) {
	_, err := Issue("", "refresh", "sub", "OWNER", "local", "")
	assert.ErrorIs(t, err, ErrNoSecret)

	_, err = Issue("access", "", "sub", "OWNER", "local", "")
	assert.ErrorIs(t, err, ErrNoSecret)

	_, err = Parse("", "whatever")
	assert.ErrorIs(t, err, ErrNoSecret)
}

func TestIssueRequiresSubject(t *testing.T) {
	_, err := Issue("a", "r", "", "OWNER", "local", "")
	assert.Error(t, err)
}
