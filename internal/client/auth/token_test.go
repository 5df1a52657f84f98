package auth

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/phishguard/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestParseIdentity_SubjectAndEmail(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	s := signToken(t, jwt.MapClaims{
		"sub":   "user-123",
		"email": "user@example.com",
		"exp":   exp.Unix(),
	})

	id, err := ParseIdentity(s)
	require.NoError(t, err)
	require.Equal(t, "user-123", id.UserID)
	require.Equal(t, "user@example.com", id.Email)
	require.True(t, id.ExpiresAt.Equal(exp))
	require.False(t, id.Expired(time.Now()))
	require.True(t, id.Expired(exp.Add(time.Second)))
}

func TestParseIdentity_EmailFallback(t *testing.T) {
	s := signToken(t, jwt.MapClaims{"email": "user@example.com"})

	id, err := ParseIdentity(s)
	require.NoError(t, err)
	require.Equal(t, "user@example.com", id.UserID)
	require.False(t, id.Expired(time.Now()))
}

func TestParseIdentity_NoIdentityClaims(t *testing.T) {
	s := signToken(t, jwt.MapClaims{"aud": "phishguard"})

	_, err := ParseIdentity(s)
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestParseIdentity_Garbage(t *testing.T) {
	_, err := ParseIdentity("not-a-token")
	require.ErrorIs(t, err, common.ErrInvalidToken)
}
