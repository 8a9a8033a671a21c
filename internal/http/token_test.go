package http

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/vacation-approval/internal/testfixtures"
)

func TestTokenManager(t *testing.T) {
	t.Parallel()

	clock := testfixtures.NewClock(time.Time{})
	tokens, err := NewTokenManager("s3cret", time.Hour, clock.NowFunc())
	require.NoError(t, err)

	token, expires, err := tokens.Issue("user-1")
	require.NoError(t, err)
	assert.True(t, expires.Equal(clock.Now().Add(time.Hour)))

	userID, err := tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	t.Run("expired", func(t *testing.T) {
		late := testfixtures.NewClock(clock.Now().Add(2 * time.Hour))
		other, err := NewTokenManager("s3cret", time.Hour, late.NowFunc())
		require.NoError(t, err)
		_, err = other.Parse(token)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewTokenManager("another", time.Hour, clock.NowFunc())
		require.NoError(t, err)
		_, err = other.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unexpected signing method", func(t *testing.T) {
		claims := jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(clock.Now().Add(time.Hour)),
		}
		forged, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("s3cret"))
		require.NoError(t, err)
		_, err = tokens.Parse(forged)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := tokens.Parse("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestNewTokenManagerValidation(t *testing.T) {
	t.Parallel()

	_, err := NewTokenManager(" ", time.Hour, nil)
	assert.Error(t, err)
	_, err = NewTokenManager("secret", 0, nil)
	assert.Error(t, err)
}
