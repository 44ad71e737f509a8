package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestTokenManagerRoundTrip(t *testing.T) {
	issued := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	m := NewTokenManager("secret", 7*24*time.Hour).WithClock(fixedClock(issued))

	token, expiresAt, err := m.GenerateJWT("4b1c7c52-3d1e-4bd5-9a69-3f0c8b1d2e77", "a@example.com", "editor")
	require.NoError(t, err)
	assert.Equal(t, issued.Add(7*24*time.Hour), expiresAt)

	claims, err := m.ParseJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "4b1c7c52-3d1e-4bd5-9a69-3f0c8b1d2e77", claims.ID)
	assert.Equal(t, "a@example.com", claims.Email)
	assert.Equal(t, "editor", claims.Role)
	assert.Equal(t, issued.Unix(), claims.IssuedAt.Unix())
}

func TestTokenManagerExpiry(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	m := NewTokenManager("secret", time.Hour).WithClock(func() time.Time { return now })

	token, _, err := m.GenerateJWT("id", "a@example.com", "admin")
	require.NoError(t, err)

	now = now.Add(59 * time.Minute)
	_, err = m.ParseJWT(token)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = m.ParseJWT(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenManagerRejects(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	m := NewTokenManager("secret", time.Hour).WithClock(fixedClock(now))
	claims := Claims{
		ID:    "id",
		Email: "a@example.com",
		Role:  "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}

	t.Run("wrong secret", func(t *testing.T) {
		token, _, err := NewTokenManager("other", time.Hour).WithClock(fixedClock(now)).GenerateJWT("id", "a@example.com", "admin")
		require.NoError(t, err)
		_, err = m.ParseJWT(token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("alg none", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = m.ParseJWT(token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("other hmac algorithm", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
		require.NoError(t, err)
		_, err = m.ParseJWT(token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("missing expiry", func(t *testing.T) {
		c := claims
		c.ExpiresAt = nil
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte("secret"))
		require.NoError(t, err)
		_, err = m.ParseJWT(token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("missing subject id", func(t *testing.T) {
		c := claims
		c.ID = ""
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte("secret"))
		require.NoError(t, err)
		_, err = m.ParseJWT(token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := m.ParseJWT("not.a.token")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})
}
