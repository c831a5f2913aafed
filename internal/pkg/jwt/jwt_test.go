package jwt

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	secret := []byte("test-secret")
	token, err := GenerateToken("user-1", "user@example.com", secret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token, secret)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.Equal(t, "user@example.com", claims.Email)
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken("user-1", "", []byte("right"), time.Hour)
	require.NoError(t, err)
	_, err = ParseToken(token, []byte("wrong"))
	require.Error(t, err)
}

func TestParseToken_Expired(t *testing.T) {
	secret := []byte("test-secret")
	token, err := GenerateToken("user-1", "", secret, -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(token, secret)
	require.Error(t, err)
}

func TestParseToken_ForeignIssuer(t *testing.T) {
	secret := []byte("test-secret")
	claims := Claims{
		UserID: "user-1",
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	_, err = ParseToken(token, secret)
	require.Error(t, err)
}
