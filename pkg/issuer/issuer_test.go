package issuer_test

import (
	"testing"
	"time"

	"github.com/campusd/professor-trust/pkg/issuer"
	"github.com/campusd/professor-trust/pkg/keys"
	"github.com/campusd/professor-trust/pkg/types"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKeys(t *testing.T) *keys.Material {
	t.Helper()
	km, err := keys.Generate("issuer-test-kid")
	require.NoError(t, err)
	return km
}

func TestIssueRejectsEmptySubject(t *testing.T) {
	iss := issuer.New(testKeys(t), "test-issuer")

	_, err := iss.Issue("", types.RoleProfessor)
	assert.ErrorIs(t, err, issuer.ErrEmptySubject)
}

func TestIssueRejectsUnknownRole(t *testing.T) {
	iss := issuer.New(testKeys(t), "test-issuer")

	_, err := iss.Issue("p1", types.Role("SUPERUSER"))
	assert.ErrorIs(t, err, issuer.ErrUnknownRole)
}

func TestIssueProducesExpectedClaims(t *testing.T) {
	km := testKeys(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	iss := issuer.New(km, "test-issuer",
		issuer.WithTTL(30*time.Minute),
		issuer.WithClock(func() time.Time { return now }),
	)

	signed, err := iss.Issue("p1", types.RoleProfessor)
	require.NoError(t, err)

	var claims types.AccessClaims
	token, err := jwt.ParseWithClaims(signed, &claims, func(token *jwt.Token) (any, error) {
		return km.Public(), nil
	}, jwt.WithTimeFunc(func() time.Time { return now }))
	require.NoError(t, err)
	require.True(t, token.Valid)

	assert.Equal(t, "test-issuer", claims.Issuer)
	assert.Equal(t, "p1", claims.Subject)
	assert.Equal(t, types.RoleProfessor, claims.Role)
	assert.Equal(t, now.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, now.Add(30*time.Minute).Unix(), claims.ExpiresAt.Unix())
	assert.Equal(t, "issuer-test-kid", token.Header["kid"])
	assert.Equal(t, "RS256", token.Header["alg"])
}

func TestExpiryAlwaysAfterIssuedAt(t *testing.T) {
	iss := issuer.New(testKeys(t), "test-issuer", issuer.WithTTL(time.Second))

	signed, err := iss.Issue("p1", types.RoleAdmin)
	require.NoError(t, err)

	var claims types.AccessClaims
	_, _, err = jwt.NewParser().ParseUnverified(signed, &claims)
	require.NoError(t, err)
	assert.True(t, claims.ExpiresAt.After(claims.IssuedAt.Time))
}

func TestDefaultTTL(t *testing.T) {
	iss := issuer.New(testKeys(t), "test-issuer")
	assert.Equal(t, issuer.DefaultTTL, iss.TTL())
}
