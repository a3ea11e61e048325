package tokens

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")

	token, err := NewAccessToken(secret, 42, "admin", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := AccessClaimsFromToken(token, secret)
	require.NoError(t, err)
	require.Equal(t, "42", claims.Subject)
	require.Equal(t, "admin", claims.Role)
	require.NotEmpty(t, claims.ID)
}

func TestAccessTokenWrongSecret(t *testing.T) {
	token, err := NewAccessToken([]byte("right"), 42, "user", time.Hour)
	require.NoError(t, err)

	_, err = AccessClaimsFromToken(token, []byte("wrong"))
	require.Error(t, err)
}

func TestAccessTokenExpired(t *testing.T) {
	secret := []byte("test-secret")

	token, err := NewAccessToken(secret, 42, "user", -time.Minute)
	require.NoError(t, err)

	_, err = AccessClaimsFromToken(token, secret)
	require.Error(t, err)
}

func TestAccessTokenGarbage(t *testing.T) {
	_, err := AccessClaimsFromToken("not.a.token", []byte("secret"))
	require.Error(t, err)
}

func TestAccessTokensAreUnique(t *testing.T) {
	secret := []byte("test-secret")

	a, err := NewAccessToken(secret, 1, "user", time.Hour)
	require.NoError(t, err)
	b, err := NewAccessToken(secret, 1, "user", time.Hour)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}
