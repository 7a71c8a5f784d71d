package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAccessSecret  = "access-secret-min-32-bytes-long!!"
	testRefreshSecret = "refresh-secret-min-32-bytes-long!"
)

func newTestCodec(now time.Time) *TokenCodec {
	c := NewTokenCodec(testAccessSecret, testRefreshSecret, 15*time.Minute, 7*24*time.Hour)
	c.Now = func() time.Time { return now }
	return c
}

func TestTokenCodec_AccessRoundTrip(t *testing.T) {
	now := time.Now()
	c := newTestCodec(now)

	tok, err := c.IssueAccessToken("user-1", "admin@example.com", "ADMIN")
	require.NoError(t, err)
	assert.NotEmpty(t, tok.Token)
	assert.WithinDuration(t, now.Add(15*time.Minute), tok.Exp, time.Second)

	claims, err := c.VerifyAccessToken(tok.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "admin@example.com", claims.Email)
	assert.Equal(t, "ADMIN", claims.Role)
}

func TestTokenCodec_RefreshRoundTrip(t *testing.T) {
	c := newTestCodec(time.Now())

	tok, err := c.IssueRefreshToken("user-1")
	require.NoError(t, err)

	claims, err := c.VerifyRefreshToken(tok.Raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestTokenCodec_RefreshTokensAreUnique(t *testing.T) {
	c := newTestCodec(time.Now())

	a, err := c.IssueRefreshToken("user-1")
	require.NoError(t, err)
	b, err := c.IssueRefreshToken("user-1")
	require.NoError(t, err)

	assert.NotEqual(t, a.Raw, b.Raw)
	assert.NotEqual(t, HashRefreshRaw(a.Raw), HashRefreshRaw(b.Raw))
}

func TestTokenCodec_SecretsAreIndependent(t *testing.T) {
	c := newTestCodec(time.Now())

	access, err := c.IssueAccessToken("user-1", "a@example.com", "USER")
	require.NoError(t, err)
	refresh, err := c.IssueRefreshToken("user-1")
	require.NoError(t, err)

	_, err = c.VerifyRefreshToken(access.Token)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	_, err = c.VerifyAccessToken(refresh.Raw)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestTokenCodec_Expired(t *testing.T) {
	issued := time.Now().Add(-time.Hour)
	c := newTestCodec(issued)

	access, err := c.IssueAccessToken("user-1", "a@example.com", "USER")
	require.NoError(t, err)
	refresh, err := c.IssueRefreshToken("user-1")
	require.NoError(t, err)

	c.Now = func() time.Time { return issued.Add(8 * 24 * time.Hour) }

	_, err = c.VerifyAccessToken(access.Token)
	assert.ErrorIs(t, err, ErrTokenExpired)

	_, err = c.VerifyRefreshToken(refresh.Raw)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenCodec_RejectsTampered(t *testing.T) {
	c := newTestCodec(time.Now())

	tok, err := c.IssueAccessToken("user-1", "a@example.com", "USER")
	require.NoError(t, err)

	parts := strings.Split(tok.Token, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	tests := map[string]string{
		"garbage":  "not-a-jwt",
		"empty":    "",
		"tampered": tampered,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := c.VerifyAccessToken(raw)
			assert.ErrorIs(t, err, ErrInvalidSignature)
		})
	}
}

func TestTokenCodec_RejectsOtherAlgorithms(t *testing.T) {
	c := newTestCodec(time.Now())

	claims := AccessClaims{
		Role: "ADMIN",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testAccessSecret))
	require.NoError(t, err)

	_, err = c.VerifyAccessToken(raw)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestHashRefreshRaw(t *testing.T) {
	h := HashRefreshRaw("abc")
	assert.Len(t, h, 64)
	assert.Equal(t, h, HashRefreshRaw("abc"))
	assert.NotEqual(t, h, HashRefreshRaw("abd"))
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("secret123", 4)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "secret123"))
	assert.False(t, VerifyPassword(hash, "secret124"))
}
