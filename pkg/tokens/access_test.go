package tokens

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-jwt-secret")

func TestAccessClaimsFromToken_RoundTrip(t *testing.T) {
	t.Parallel()

	tok, err := SignAccessToken("user-1", "admin", 15*time.Minute, secret)
	require.NoError(t, err)

	claims, err := AccessClaimsFromToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "admin", claims.Role)
}

func TestAccessClaimsFromToken_Rejects(t *testing.T) {
	t.Parallel()

	expired, err := SignAccessToken("user-1", "user", -time.Minute, secret)
	require.NoError(t, err)
	_, err = AccessClaimsFromToken(expired, secret)
	require.Error(t, err)
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))

	good, err := SignAccessToken("user-1", "user", time.Minute, secret)
	require.NoError(t, err)
	_, err = AccessClaimsFromToken(good, []byte("other-secret"))
	require.Error(t, err)

	noSub, err := SignAccessToken("", "user", time.Minute, secret)
	require.NoError(t, err)
	_, err = AccessClaimsFromToken(noSub, secret)
	assert.ErrorIs(t, err, ErrNoSubject)

	_, err = AccessClaimsFromToken("not-a-jwt", secret)
	require.Error(t, err)
}

func TestAccessClaimsFromToken_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	claims := AccessClaims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(secret)
	require.NoError(t, err)

	_, err = AccessClaimsFromToken(tok, secret)
	require.Error(t, err)
}
