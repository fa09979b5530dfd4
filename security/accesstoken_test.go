package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-signing-secret")

func TestCreateAndParseAccessToken(t *testing.T) {
	token, err := CreateAccessToken(&Identity{UserID: 42, Email: "a@b.com"}, secret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseAccessToken(token, secret)
	require.NoError(t, err)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.NotEmpty(t, claims.ID)
}

func TestParseAccessTokenWrongSecret(t *testing.T) {
	token, err := CreateAccessToken(&Identity{UserID: 1}, secret, time.Hour)
	require.NoError(t, err)

	_, err = ParseAccessToken(token, []byte("other"))
	assert.Error(t, err)
}

func TestTokenExpired(t *testing.T) {
	token, err := CreateAccessToken(&Identity{UserID: 1}, secret, time.Minute)
	require.NoError(t, err)

	assert.False(t, TokenExpired(token, time.Now()))
	assert.True(t, TokenExpired(token, time.Now().Add(2*time.Minute)))
	assert.False(t, TokenExpired("tok123", time.Now()), "opaque tokens are left to the server")
}
