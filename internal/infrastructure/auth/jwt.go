package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/avdeev/authgate/internal/application/ports"
)

// MaxTokenTTL bounds how far out a token may expire.
const MaxTokenTTL = 24 * time.Hour

// TokenIssuer implements ports.TokenIssuer with HS256 and a process-wide
// secret.
type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

type accessClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
}

// NewTokenIssuer creates an issuer. A ttl of zero or beyond MaxTokenTTL is
// clamped to MaxTokenTTL.
func NewTokenIssuer(secret []byte, issuer string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 || ttl > MaxTokenTTL {
		ttl = MaxTokenTTL
	}
	return &TokenIssuer{secret: secret, issuer: issuer, ttl: ttl}
}

// Issue signs a token carrying userID as subject, issued-at, and expiry.
func (t *TokenIssuer) Issue(userID string) (string, error) {
	now := time.Now()
	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
		UserID: userID,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Validate parses and verifies the token and returns the subject. Expired,
// tampered, and malformed tokens are distinguishable here via errors.Is
// (jwt.ErrTokenExpired etc.), but callers surface them identically.
func (t *TokenIssuer) Validate(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &accessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(*accessClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token claims")
	}
	if claims.UserID == "" {
		return "", errors.New("token missing user id")
	}
	return claims.UserID, nil
}

var _ ports.TokenIssuer = (*TokenIssuer)(nil)
