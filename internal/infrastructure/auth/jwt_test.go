package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndValidate_RoundTrip(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer([]byte("test-secret"), "authgate", time.Hour)
	token, err := issuer.Issue("user-123")
	require.NoError(t, err)

	userID, err := issuer.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestValidate_Expired(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer([]byte("test-secret"), "authgate", time.Millisecond)
	token, err := issuer.Issue("user-123")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	_, err = issuer.Validate(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestValidate_TamperedSignature(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer([]byte("test-secret"), "authgate", time.Hour)
	token, err := issuer.Issue("user-123")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = issuer.Validate(tampered)
	assert.Error(t, err)
}

func TestValidate_WrongSecret(t *testing.T) {
	t.Parallel()

	token, err := NewTokenIssuer([]byte("right-secret"), "authgate", time.Hour).Issue("u1")
	require.NoError(t, err)

	_, err = NewTokenIssuer([]byte("wrong-secret"), "authgate", time.Hour).Validate(token)
	assert.Error(t, err)
}

func TestValidate_Malformed(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer([]byte("test-secret"), "authgate", time.Hour)
	_, err := issuer.Validate("not.a.jwt")
	assert.Error(t, err)
}

func TestNewTokenIssuer_ClampsTTL(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer([]byte("test-secret"), "authgate", 48*time.Hour)
	token, err := issuer.Issue("user-123")
	require.NoError(t, err)

	claims := &accessClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)
	ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	assert.LessOrEqual(t, ttl, MaxTokenTTL)
	assert.Equal(t, "user-123", claims.UserID)
}
